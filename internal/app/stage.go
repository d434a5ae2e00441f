package app

import "fmt"

// Stage — состояние конвейера между запусками
type Stage int

const (
	StageNotStarted Stage = iota
	StagePagesCollected
	StageAggregated
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StagePagesCollected:
		return "pages_collected"
	case StageAggregated:
		return "aggregated"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}
