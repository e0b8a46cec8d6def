package pubsub

import (
	"sort"

	"github.com/timshannon/badgerhold/v4"
)

type store struct {
	db *badgerhold.Store
}

func (s store) add(sub *Subscription) error {
	return s.db.Insert(sub.ID, *sub)
}

func (s store) remove(id string) (bool, error) {
	if err := s.db.Delete(id, Subscription{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s store) all() (subscriptions, error) {
	var subs []Subscription
	if err := s.db.Find(&subs, nil); err != nil {
		return nil, err
	}
	return sorted(subs), nil
}

func (s store) forEvent(event string) (subscriptions, error) {
	var subs []Subscription
	query := badgerhold.Where("Event").Eq(event).Index("Event")
	if err := s.db.Find(&subs, query); err != nil {
		return nil, err
	}
	return sorted(subs), nil
}

func (s store) close() error {
	return s.db.Close()
}

func sorted(subs []Subscription) subscriptions {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs
}
