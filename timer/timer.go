// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is a scheduled callback, optionally repeating. Games are never
// expired by a timer; this scheduler only drives housekeeping such as
// metrics refreshes.
type Task struct {
	ID       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Scheduler runs callbacks at their due time from a single heap.
type Scheduler struct {
	queue   taskQueue
	mutex   sync.Mutex
	nextID  int64
	trigger chan *Task
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue:   make(taskQueue, 0),
		trigger: make(chan *Task, 1000),
		nextID:  1,
	}
	heap.Init(&s.queue)
	go s.process()
	return s
}

// Schedule registers a callback after delay; a non-zero interval makes
// it repeat. Returns the task id.
func (s *Scheduler) Schedule(delay time.Duration, interval time.Duration, callback func()) int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task := &Task{
		ID:       s.nextID,
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	s.nextID++

	heap.Push(&s.queue, task)
	return task.ID
}

// Remove drops a scheduled task.
func (s *Scheduler) Remove(taskID int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, task := range s.queue {
		if task.ID == taskID {
			heap.Remove(&s.queue, i)
			break
		}
	}
}

func (s *Scheduler) process() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mutex.Lock()
			now := time.Now()

			for s.queue.Len() > 0 {
				task := s.queue[0]
				if task.Execute.After(now) {
					break
				}

				heap.Pop(&s.queue)
				s.trigger <- task

				if task.Interval > 0 {
					task.Execute = now.Add(task.Interval)
					heap.Push(&s.queue, task)
				}
			}
			s.mutex.Unlock()

		case task := <-s.trigger:
			go task.Callback()
		}
	}
}
