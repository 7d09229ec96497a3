package crawl

import "fmt"

// EventType indicates the type of progress event.
type EventType int

const (
	EventStarted EventType = iota
	EventSucceeded
	EventRetrying
	EventFailed
	EventCancelled
	EventStopRequested
	EventFinished
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventSucceeded:
		return "succeeded"
	case EventRetrying:
		return "retrying"
	case EventFailed:
		return "failed"
	case EventCancelled:
		return "cancelled"
	case EventStopRequested:
		return "stop requested"
	case EventFinished:
		return "finished"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event reports progress during an Executor run.
// Index is -1 for events that concern the whole run.
type Event[T any] struct {
	Type        EventType
	Index       int
	Item        T
	Attempt     int
	MaxAttempts int
	Err         error
	Completed   int
	Total       int
}

// String renders the event as a one-line progress message.
func (e Event[T]) String() string {
	switch e.Type {
	case EventStarted:
		return fmt.Sprintf("Scraping: %v (attempt %d/%d)", e.Item, e.Attempt, e.MaxAttempts)
	case EventSucceeded:
		return fmt.Sprintf("Successfully scraped: %v", e.Item)
	case EventRetrying:
		return fmt.Sprintf("Retrying %v after attempt %d/%d: %v", e.Item, e.Attempt, e.MaxAttempts, e.Err)
	case EventFailed:
		return fmt.Sprintf("Error scraping %v (attempt %d/%d): %v", e.Item, e.Attempt, e.MaxAttempts, e.Err)
	case EventCancelled:
		return fmt.Sprintf("Scraping stopped by user during: %v", e.Item)
	case EventStopRequested:
		return "Stop requested, finishing in-flight pages"
	case EventFinished:
		return fmt.Sprintf("Finished %d/%d", e.Completed, e.Total)
	default:
		return e.Type.String()
	}
}

// ProgressFunc is a callback for reporting executor progress.
type ProgressFunc[T any] func(event Event[T])
