package query

import "context"

type AccessAvailabilityReader interface {
	CanRequestAccessWithoutUI(ctx context.Context) bool
}

type ForceBlockingRenewReader interface {
	ForceBlockingRenew(ctx context.Context) (bool, error)
}

type CanRequestAccessWithoutUIQuery struct {
	reader AccessAvailabilityReader
}

func NewCanRequestAccessWithoutUIQuery(reader AccessAvailabilityReader) *CanRequestAccessWithoutUIQuery {
	return &CanRequestAccessWithoutUIQuery{reader: reader}
}

func (q *CanRequestAccessWithoutUIQuery) Query(ctx context.Context, _ CanRequestAccessWithoutUIMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: access availability reader is required")
	}
	return q.reader.CanRequestAccessWithoutUI(ctx), nil
}

type ForceBlockingRenewQuery struct {
	reader ForceBlockingRenewReader
}

func NewForceBlockingRenewQuery(reader ForceBlockingRenewReader) *ForceBlockingRenewQuery {
	return &ForceBlockingRenewQuery{reader: reader}
}

func (q *ForceBlockingRenewQuery) Query(ctx context.Context, _ ForceBlockingRenewMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: force blocking renew reader is required")
	}
	return q.reader.ForceBlockingRenew(ctx)
}
