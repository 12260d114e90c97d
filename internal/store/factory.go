package store

import (
	"gitgrok.app/api/core/db"
)

// Stores hands out stores bound to one Querier, either the pool or a transaction.
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.q)
}

func (s *Stores) Chats() ChatStore {
	return newChatStore(s.q)
}

func (s *Stores) Reports() ReportStore {
	return newReportStore(s.q)
}
