package execution

import "ctp/internal/domain"

// Scheduler distributes packages across workers
type Scheduler interface {
	Schedule(tests []domain.Test, workerCount int) [][]domain.Test
}

// RoundRobinScheduler distributes packages evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes packages evenly across workers using round-robin
func (s *RoundRobinScheduler) Schedule(tests []domain.Test, workerCount int) [][]domain.Test {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]domain.Test, workerCount)
	for i := range distribution {
		distribution[i] = make([]domain.Test, 0)
	}

	for i, test := range tests {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], test)
	}

	return distribution
}
