package actions

import (
	"sort"
	"time"
)

// QueueItem is one scheduled action with its derived execution metadata.
// Index is the position in the slice handed to Schedule so callers can map
// results back to submission order.
type QueueItem struct {
	Action        Action
	Index         int
	Priority      int
	Weight        Weight
	EstimatedCost time.Duration
}

// Tier groups the items of one priority level, split by where they execute.
// Local items run against in-process canvas state; APIBound items consume
// remote quota and pass through the rate limiter.
type Tier struct {
	Priority int
	Local    []QueueItem
	APIBound []QueueItem
}

// Len returns the number of items in the tier
func (t Tier) Len() int {
	return len(t.Local) + len(t.APIBound)
}

// Queue is the scheduler output: tiers in ascending priority order, each
// internally preserving batch submission order
type Queue struct {
	Tiers []Tier
}

// Len returns the total number of scheduled items
func (q Queue) Len() int {
	n := 0
	for _, tier := range q.Tiers {
		n += tier.Len()
	}
	return n
}

// Items returns every scheduled item in execution order: tier by tier,
// local before API-bound, submission order within each slice
func (q Queue) Items() []QueueItem {
	items := make([]QueueItem, 0, q.Len())
	for _, tier := range q.Tiers {
		items = append(items, tier.Local...)
		items = append(items, tier.APIBound...)
	}
	return items
}

// Scheduler orders a validated batch into priority tiers. Scheduling is a
// pure function of the input: same batch, same queue.
type Scheduler struct {
	classifier *Classifier
}

// NewScheduler creates a scheduler over the given classifier
func NewScheduler(classifier *Classifier) *Scheduler {
	return &Scheduler{classifier: classifier}
}

// Schedule partitions actions into tiers. Within a tier, items keep the
// relative order they were submitted in. Unknown kinds must have been
// rejected at validation; seeing one here returns a configuration error.
func (s *Scheduler) Schedule(batch []Action) (Queue, error) {
	byPriority := make(map[int]*Tier)
	priorities := make([]int, 0, 4)

	for index, action := range batch {
		priority, err := s.classifier.PriorityFor(action.Kind)
		if err != nil {
			return Queue{}, err
		}
		weight, err := s.classifier.Classify(action.Kind)
		if err != nil {
			return Queue{}, err
		}

		item := QueueItem{
			Action:        action,
			Index:         index,
			Priority:      priority,
			Weight:        weight,
			EstimatedCost: s.classifier.EstimatedCost(weight),
		}

		tier, ok := byPriority[priority]
		if !ok {
			tier = &Tier{Priority: priority}
			byPriority[priority] = tier
			priorities = append(priorities, priority)
		}
		if weight.IsAPIBound() {
			tier.APIBound = append(tier.APIBound, item)
		} else {
			tier.Local = append(tier.Local, item)
		}
	}

	sort.Ints(priorities)

	queue := Queue{Tiers: make([]Tier, 0, len(priorities))}
	for _, priority := range priorities {
		queue.Tiers = append(queue.Tiers, *byPriority[priority])
	}
	return queue, nil
}
