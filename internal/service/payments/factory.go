package payments

import (
	"context"
	"strings"
)

type actionFunc func(context.Context, Event) error

type actionFactory struct {
	byStatus map[string]actionFunc
}

func newActionFactory(onPaid, onFailed, onRefunded actionFunc) *actionFactory {
	return &actionFactory{
		byStatus: map[string]actionFunc{
			"paid":     onPaid,
			"failed":   onFailed,
			"refunded": onRefunded,
		},
	}
}

func (f *actionFactory) get(status string) (actionFunc, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	fn, ok := f.byStatus[status]
	return fn, ok
}
