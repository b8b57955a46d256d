package queue

import (
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

type Queue struct {
	gs  service.GenerationService
	log *logger.Logger
}

func NewQueue(gs service.GenerationService, log *logger.Logger) *Queue {
	return &Queue{
		gs:  gs,
		log: log.With("component", "queue"),
	}
}

const TaskTypeGeneratePoster = "poster:generate"

type GeneratePosterPayload struct {
	PosterID string                  `json:"poster_id"`
	Request  service.GenerateRequest `json:"request"`
}
