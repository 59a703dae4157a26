package line

import (
	"context"
	"log"
	"sync"

	"teacher-bot/api/internal/quiz"
)

type UserLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type Pusher interface {
	Push(ctx context.Context, userID, text string) error
}

// Broadcaster distributes a scheduled quiz question to every known user.
// Sends run with bounded concurrency and one user's failure never aborts
// the rest.
type Broadcaster struct {
	Users   UserLister
	Quiz    *quiz.Manager
	Push    Pusher
	Workers int
}

const defaultBroadcastWorkers = 4

// Run begins a session per user and pushes the question. Returns how many
// sends succeeded and how many users were skipped or failed.
func (b *Broadcaster) Run(ctx context.Context) (sent, failed int, err error) {
	ids, err := b.Users.ListIDs(ctx)
	if err != nil {
		return 0, 0, err
	}

	workers := b.Workers
	if workers <= 0 {
		workers = defaultBroadcastWorkers
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)
	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(userID string) {
			defer wg.Done()
			defer func() { <-sem }()

			ok := b.sendOne(ctx, userID)
			mu.Lock()
			if ok {
				sent++
			} else {
				failed++
			}
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return sent, failed, nil
}

func (b *Broadcaster) sendOne(ctx context.Context, userID string) bool {
	unlock := b.Quiz.Sessions.LockUser(userID)
	defer unlock()

	br, err := b.Quiz.Begin(ctx, userID)
	if err != nil || br.Empty {
		if err != nil {
			log.Printf("broadcast: begin for %s: %v", userID, err)
		}
		return false
	}
	if err := b.Push.Push(ctx, userID, msgBroadcastQuestion(br.Word)); err != nil {
		log.Printf("broadcast: push to %s: %v", userID, err)
		// the question was never delivered; don't leave a ghost session
		b.Quiz.Sessions.Delete(userID)
		return false
	}
	return true
}
