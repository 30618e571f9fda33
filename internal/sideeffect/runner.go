// Package sideeffect runs best-effort work that must happen after a database
// commit: notifications, email, realtime broadcasts. Each task is isolated;
// one failing or panicking task never prevents the others from running, and
// none of them can roll back the committed mutation.
package sideeffect

import (
	"context"
	"log"
	"time"

	"campus-backend/internal/metrics"
)

const taskTimeout = 15 * time.Second

type Task struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Run executes the tasks in order, recovering panics and logging failures.
func Run(tasks ...Task) {
	for _, task := range tasks {
		runOne(task)
	}
}

// RunAsync executes the tasks on a separate goroutine so the HTTP response
// is not held up by slow effects (SMTP, model calls).
func RunAsync(tasks ...Task) {
	go Run(tasks...)
}

func runOne(task Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.SideEffectFailuresTotal.WithLabelValues(task.Name).Inc()
			log.Printf("[SideEffect] %s panicked: %v", task.Name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	if err := task.Fn(ctx); err != nil {
		metrics.SideEffectFailuresTotal.WithLabelValues(task.Name).Inc()
		log.Printf("[SideEffect] %s failed: %v", task.Name, err)
	}
}
