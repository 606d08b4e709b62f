package service

import (
	"fmt"
	"strings"
	"tienda-services/internal/config"
)

// ReconcilePolicy decides what happens to requested related ids that are not stored.
type ReconcilePolicy int

const (
	// ReconcileLenient drops unknown ids.
	ReconcileLenient ReconcilePolicy = iota
	// ReconcileStrict fails the whole operation with ErrNotFound.
	ReconcileStrict
)

func (p ReconcilePolicy) String() string {
	if p == ReconcileStrict {
		return "strict"
	}
	return "lenient"
}

func ParseReconcilePolicy(s string) (ReconcilePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lenient":
		return ReconcileLenient, nil
	case "strict":
		return ReconcileStrict, nil
	}
	return 0, fmt.Errorf("unknown reconcile policy %q", s)
}

// TotalPolicy decides where an order total comes from.
type TotalPolicy int

const (
	// TotalComputed keeps total equal to the sum of the line subtotals.
	TotalComputed TotalPolicy = iota
	// TotalSupplied stores whatever total the caller sends.
	TotalSupplied
)

func (p TotalPolicy) String() string {
	if p == TotalSupplied {
		return "supplied"
	}
	return "computed"
}

func ParseTotalPolicy(s string) (TotalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "computed":
		return TotalComputed, nil
	case "supplied":
		return TotalSupplied, nil
	}
	return 0, fmt.Errorf("unknown order total policy %q", s)
}

type Policies struct {
	OnCreate   ReconcilePolicy
	OnUpdate   ReconcilePolicy
	OrderTotal TotalPolicy
}

// DefaultPolicies mirrors the stock behaviour: lenient create, strict update, computed totals.
func DefaultPolicies() Policies {
	return Policies{
		OnCreate:   ReconcileLenient,
		OnUpdate:   ReconcileStrict,
		OrderTotal: TotalComputed,
	}
}

func PoliciesFromConfig(cfg config.Policy) (Policies, error) {
	onCreate, err := ParseReconcilePolicy(cfg.ReconcileOnCreate)
	if err != nil {
		return Policies{}, err
	}
	onUpdate, err := ParseReconcilePolicy(cfg.ReconcileOnUpdate)
	if err != nil {
		return Policies{}, err
	}
	total, err := ParseTotalPolicy(cfg.OrderTotal)
	if err != nil {
		return Policies{}, err
	}

	return Policies{
		OnCreate:   onCreate,
		OnUpdate:   onUpdate,
		OrderTotal: total,
	}, nil
}
