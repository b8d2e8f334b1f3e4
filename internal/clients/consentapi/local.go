package consentapi

import (
	"context"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/storage"
)

// LocalChecker keeps consent records in the built-in store
type LocalChecker struct {
	store    storage.Store
	tenantID string
}

// NewLocalChecker creates a store-backed consent checker
func NewLocalChecker(store storage.Store, tenantID string) *LocalChecker {
	return &LocalChecker{store: store, tenantID: tenantID}
}

func (c *LocalChecker) HasConsent(_ context.Context, phone string) (bool, error) {
	return c.store.HasConsent(c.tenantID, phone)
}

func (c *LocalChecker) RecordConsent(_ context.Context, phone, policyVersion string) error {
	_, err := c.store.RecordConsent(c.tenantID, phone, policyVersion)
	return err
}
