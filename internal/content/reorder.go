package content

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/portfolio/pkg"
)

const (
	reorderErrNotFound     = "not found"
	reorderErrStoreFailure = "store failure"
)

type OrderUpdate struct {
	ID    int `json:"id"`
	Order int `json:"order"`
}

type ReorderFailure struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

type ReorderResult struct {
	Updated []int            `json:"updated"`
	Failed  []ReorderFailure `json:"failed"`
}

func (r ReorderResult) OK() bool {
	return len(r.Failed) == 0
}

type orderSetter interface {
	SetOrder(ctx context.Context, id, order int) error
}

// ValidateReorder rejects empty batches and batches repeating an id or an order value.
func ValidateReorder(items []OrderUpdate) []pkg.FieldError {
	if len(items) == 0 {
		return []pkg.FieldError{{Field: "items", Message: "at least one item is required"}}
	}

	var fieldErrors []pkg.FieldError
	seenIDs := make(map[int]bool, len(items))
	seenOrders := make(map[int]bool, len(items))
	for i, item := range items {
		if item.ID <= 0 {
			fieldErrors = append(fieldErrors, pkg.FieldError{
				Field:   fmt.Sprintf("items[%d].id", i),
				Message: "id must be a positive integer",
			})
		}
		if seenIDs[item.ID] {
			fieldErrors = append(fieldErrors, pkg.FieldError{
				Field:   fmt.Sprintf("items[%d].id", i),
				Message: fmt.Sprintf("duplicate id %d", item.ID),
			})
		}
		if seenOrders[item.Order] {
			fieldErrors = append(fieldErrors, pkg.FieldError{
				Field:   fmt.Sprintf("items[%d].order", i),
				Message: fmt.Sprintf("duplicate order %d", item.Order),
			})
		}
		seenIDs[item.ID] = true
		seenOrders[item.Order] = true
	}

	return fieldErrors
}

// Reorder applies every update on its own, in the given order. A failing item does not stop the
// rest and nothing is rolled back.
func Reorder(ctx context.Context, store orderSetter, items []OrderUpdate) ReorderResult {
	result := ReorderResult{
		Updated: []int{},
		Failed:  []ReorderFailure{},
	}

	for _, item := range items {
		err := store.SetOrder(ctx, item.ID, item.Order)
		switch {
		case err == nil:
			result.Updated = append(result.Updated, item.ID)
		case errors.Is(err, ErrNotFound):
			result.Failed = append(result.Failed, ReorderFailure{ID: item.ID, Error: reorderErrNotFound})
		default:
			log.Errorf("reorder, set order of %d: %s", item.ID, err)
			result.Failed = append(result.Failed, ReorderFailure{ID: item.ID, Error: reorderErrStoreFailure})
		}
	}

	return result
}

func (r ReorderResult) FieldErrors() []pkg.FieldError {
	fieldErrors := make([]pkg.FieldError, 0, len(r.Failed))
	for _, f := range r.Failed {
		fieldErrors = append(fieldErrors, pkg.FieldError{
			Field:   fmt.Sprintf("%d", f.ID),
			Message: f.Error,
		})
	}
	return fieldErrors
}
