// Package sweeper drives the room store's inactivity cleanup. The store
// itself runs no timers; this is the external periodic caller it expects.
package sweeper

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linguaroom/linguaroom/internal/store"
)

type Sweeper struct {
	rooms     store.RoomRepository
	log       *log.Logger
	interval  time.Duration
	threshold time.Duration
	stop      chan struct{}
	done      chan struct{}
}

// New creates a sweeper that deletes rooms inactive for longer than threshold,
// checking every interval once Run is called.
func New(rooms store.RoomRepository, logger *log.Logger, interval, threshold time.Duration) *Sweeper {
	return &Sweeper{
		rooms:     rooms,
		log:       logger,
		interval:  interval,
		threshold: threshold,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Sweeper) Run() {
	go s.loop()
}

func (s *Sweeper) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.SweepOnce(); err != nil {
				s.log.Printf("sweep: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}

// Stop halts the periodic loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// SweepOnce performs a single cleanup pass and returns the ids of the rooms
// it evicted.
func (s *Sweeper) SweepOnce() ([]string, error) {
	deleted, err := s.rooms.CheckAndCleanupInactiveRooms(s.threshold)
	if err != nil {
		return nil, fmt.Errorf("cleanup inactive rooms: %w", err)
	}

	if len(deleted) > 0 {
		s.log.Printf("sweep %s evicted %d inactive room(s): %s",
			uuid.NewString(), len(deleted), strings.Join(deleted, ", "))
	}

	return deleted, nil
}
