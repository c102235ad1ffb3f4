package storage

import (
	"context"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/metrics"
)

// Observed 为每个存储操作计数
type Observed struct {
	inner   Storage
	metrics *metrics.Metrics
}

func NewObserved(inner Storage, m *metrics.Metrics) *Observed {
	return &Observed{inner: inner, metrics: m}
}

func observe[T any](o *Observed, op string, v T, err error) (T, error) {
	o.metrics.RecordStorageOp(op, err)
	return v, err
}

func (o *Observed) GetUser(ctx context.Context, id uint) (*models.User, error) {
	v, err := o.inner.GetUser(ctx, id)
	return observe(o, "get_user", v, err)
}

func (o *Observed) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	v, err := o.inner.GetUserByUsername(ctx, username)
	return observe(o, "get_user_by_username", v, err)
}

func (o *Observed) CreateUser(ctx context.Context, in models.UserInsert) (*models.User, error) {
	v, err := o.inner.CreateUser(ctx, in)
	return observe(o, "create_user", v, err)
}

func (o *Observed) UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	v, err := o.inner.UpdateUser(ctx, id, patch)
	return observe(o, "update_user", v, err)
}

func (o *Observed) GetEmergencyProtocols(ctx context.Context) ([]models.EmergencyProtocol, error) {
	v, err := o.inner.GetEmergencyProtocols(ctx)
	return observe(o, "get_protocols", v, err)
}

func (o *Observed) GetEmergencyProtocol(ctx context.Context, protocolType string) (*models.EmergencyProtocol, error) {
	v, err := o.inner.GetEmergencyProtocol(ctx, protocolType)
	return observe(o, "get_protocol", v, err)
}

func (o *Observed) CreateEmergencyProtocol(ctx context.Context, in models.ProtocolInsert) (*models.EmergencyProtocol, error) {
	v, err := o.inner.CreateEmergencyProtocol(ctx, in)
	return observe(o, "create_protocol", v, err)
}

func (o *Observed) GetEmergencyContacts(ctx context.Context, country string) ([]models.EmergencyContact, error) {
	v, err := o.inner.GetEmergencyContacts(ctx, country)
	return observe(o, "get_contacts", v, err)
}

func (o *Observed) GetEmergencyContactsByType(ctx context.Context, contactType, country string) ([]models.EmergencyContact, error) {
	v, err := o.inner.GetEmergencyContactsByType(ctx, contactType, country)
	return observe(o, "get_contacts_by_type", v, err)
}

func (o *Observed) CreateEmergencyContact(ctx context.Context, in models.ContactInsert) (*models.EmergencyContact, error) {
	v, err := o.inner.CreateEmergencyContact(ctx, in)
	return observe(o, "create_contact", v, err)
}

func (o *Observed) CreateUserSession(ctx context.Context, in models.SessionInsert) (*models.UserSession, error) {
	v, err := o.inner.CreateUserSession(ctx, in)
	return observe(o, "create_session", v, err)
}

func (o *Observed) GetUserSession(ctx context.Context, id uint) (*models.UserSession, error) {
	v, err := o.inner.GetUserSession(ctx, id)
	return observe(o, "get_session", v, err)
}

func (o *Observed) GetUserSessionsByUser(ctx context.Context, userID uint) ([]models.UserSession, error) {
	v, err := o.inner.GetUserSessionsByUser(ctx, userID)
	return observe(o, "get_sessions_by_user", v, err)
}

func (o *Observed) UpdateUserSession(ctx context.Context, id uint, patch models.SessionPatch) (*models.UserSession, error) {
	v, err := o.inner.UpdateUserSession(ctx, id, patch)
	return observe(o, "update_session", v, err)
}

func (o *Observed) AppendUserSessionAction(ctx context.Context, id uint, action models.Action) (*models.UserSession, error) {
	v, err := o.inner.AppendUserSessionAction(ctx, id, action)
	return observe(o, "append_session_action", v, err)
}

func (o *Observed) EndUserSession(ctx context.Context, id uint) (*models.UserSession, error) {
	v, err := o.inner.EndUserSession(ctx, id)
	return observe(o, "end_session", v, err)
}

func (o *Observed) CountActiveSessions(ctx context.Context) (int64, error) {
	v, err := o.inner.CountActiveSessions(ctx)
	return observe(o, "count_active_sessions", v, err)
}

func (o *Observed) Ping(ctx context.Context) error {
	err := o.inner.Ping(ctx)
	o.metrics.RecordStorageOp("ping", err)
	return err
}
