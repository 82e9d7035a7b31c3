package tracks

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
)

// Filter selects members of an ordered list. A nil Filter selects every
// member.
type Filter func(model.OrderedItem) bool

// ByState selects members in any of the given states.
func ByState(states ...string) Filter {
	return func(item model.OrderedItem) bool {
		return slices.Contains(states, item.GetState())
	}
}

func selectItems[T model.OrderedItem](items []T, f Filter) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if f == nil || f(it) {
			out = append(out, it)
		}
	}
	return out
}

func idsOf[T model.OrderedItem](items []T) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.GetID()
	}
	return ids
}

// withPrefix returns the full id order: prefix first, then every other
// member of items in its current order.
func withPrefix[T model.OrderedItem](items, prefix []T) []string {
	placed := make(map[string]bool, len(prefix))
	order := make([]string, 0, len(items))
	for _, it := range prefix {
		placed[it.GetID()] = true
		order = append(order, it.GetID())
	}
	for _, it := range items {
		if !placed[it.GetID()] {
			order = append(order, it.GetID())
		}
	}
	return order
}

// pick returns the members named by ids, in ids order. Unknown ids are
// skipped.
func pick[T model.OrderedItem](items []T, ids []string) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if idx := slices.IndexFunc(items, func(it T) bool { return it.GetID() == id }); idx >= 0 {
			out = append(out, items[idx])
		}
	}
	return out
}

// sortByName returns a copy of items sorted by case-insensitive name.
// Equal names keep their current order.
func sortByName[T model.OrderedItem](items []T) []T {
	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].GetName()) < strings.ToLower(sorted[j].GetName())
	})
	return sorted
}

// reorder rebuilds items in the given id order, numbering positions from 1.
// Ids missing from items are skipped.
func reorder[T model.OrderedItem](items []T, order []string, setPosition func(*T, int)) []T {
	byID := make(map[string]T, len(items))
	for _, it := range items {
		byID[it.GetID()] = it
	}
	out := make([]T, 0, len(order))
	for _, id := range order {
		it, ok := byID[id]
		if !ok {
			continue
		}
		setPosition(&it, len(out)+1)
		out = append(out, it)
	}
	return out
}

// neighbour returns the member step places away from id among members
// sharing its state, in position order.
func neighbour[T model.OrderedItem](items []T, id string, step int) (T, bool) {
	var zero T
	idx := slices.IndexFunc(items, func(it T) bool { return it.GetID() == id })
	if idx < 0 {
		return zero, false
	}
	peers := selectItems(items, ByState(items[idx].GetState()))
	sort.SliceStable(peers, func(i, j int) bool {
		return peers[i].GetPosition() < peers[j].GetPosition()
	})
	at := slices.IndexFunc(peers, func(it T) bool { return it.GetID() == id })
	next := at + step
	if next < 0 || next >= len(peers) {
		return zero, false
	}
	return peers[next], true
}

// findByParams resolves the first non-empty value among keys to a member.
func findByParams[T model.OrderedItem](items []T, kind string, params map[string]string, keys ...string) (T, error) {
	var zero T
	id := ""
	for _, k := range keys {
		if params[k] != "" {
			id = params[k]
			break
		}
	}
	if id == "" {
		return zero, fmt.Errorf("%s: no id among %s: %w", kind, strings.Join(keys, ", "), store.ErrNotFound)
	}
	for _, it := range items {
		if it.GetID() == id {
			return it, nil
		}
	}
	return zero, fmt.Errorf("%s %s %w", kind, id, store.ErrNotFound)
}
