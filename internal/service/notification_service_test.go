package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
	"github.com/terminusgps/terminusgps-notifications/internal/remote"
	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
	"github.com/terminusgps/terminusgps-notifications/internal/wire"
)

// ============================================
// 测试替身
// ============================================

type fakeNotificationsRepo struct {
	rows       map[string]*domain.Notification
	failCreate bool
}

func newFakeNotificationsRepo() *fakeNotificationsRepo {
	return &fakeNotificationsRepo{rows: make(map[string]*domain.Notification)}
}

func (r *fakeNotificationsRepo) GetNotification(_ context.Context, customerID, id string) (*domain.Notification, error) {
	n, ok := r.rows[id]
	if !ok || n.CustomerID != customerID {
		return nil, fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNotificationsRepo) ListNotifications(_ context.Context, customerID string, _, _ int) ([]*domain.Notification, int, error) {
	var list []*domain.Notification
	for _, n := range r.rows {
		if n.CustomerID == customerID {
			list = append(list, n)
		}
	}
	return list, len(list), nil
}

func (r *fakeNotificationsRepo) CreateNotification(_ context.Context, n *domain.Notification) error {
	if r.failCreate {
		return fmt.Errorf("failed to create notification: disk full")
	}
	copied := *n
	r.rows[n.ID] = &copied
	return nil
}

func (r *fakeNotificationsRepo) UpdateNotification(_ context.Context, n *domain.Notification) error {
	if _, ok := r.rows[n.ID]; !ok {
		return fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}
	copied := *n
	r.rows[n.ID] = &copied
	return nil
}

func (r *fakeNotificationsRepo) SetEnabled(_ context.Context, customerID, id string, enabled bool) error {
	n, ok := r.rows[id]
	if !ok || n.CustomerID != customerID {
		return fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}
	n.Enabled = enabled
	return nil
}

func (r *fakeNotificationsRepo) DeleteNotification(_ context.Context, customerID, id string) error {
	n, ok := r.rows[id]
	if !ok || n.CustomerID != customerID {
		return fmt.Errorf("notification not found: %w", sql.ErrNoRows)
	}
	delete(r.rows, id)
	return nil
}

type fakeCustomersRepo struct {
	rows map[string]*domain.Customer
}

func newFakeCustomersRepo() *fakeCustomersRepo {
	return &fakeCustomersRepo{rows: make(map[string]*domain.Customer)}
}

func (r *fakeCustomersRepo) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("customer not found: %w", sql.ErrNoRows)
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCustomersRepo) GetCustomerByUsername(_ context.Context, username string) (*domain.Customer, error) {
	for _, c := range r.rows {
		if c.Username == username {
			copied := *c
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("customer not found: %w", sql.ErrNoRows)
}

func (r *fakeCustomersRepo) CreateCustomer(_ context.Context, c *domain.Customer) error {
	copied := *c
	r.rows[c.ID] = &copied
	return nil
}

func (r *fakeCustomersRepo) UpdateResourceID(_ context.Context, id string, resourceID int64) error {
	c, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("customer not found: %w", sql.ErrNoRows)
	}
	c.ResourceID = resourceID
	return nil
}

func (r *fakeCustomersRepo) UpdateToken(_ context.Context, id, token string) error {
	c, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("customer not found: %w", sql.ErrNoRows)
	}
	c.Token = token
	return nil
}

// fakeRemoteAPI 记录全部远程调用的桩
type fakeRemoteAPI struct {
	payloads   []*wire.Payload
	nextID     int64
	failMutate bool
	units      []remote.Unit
}

func (f *fakeRemoteAPI) Login(_ context.Context, token string) (*remote.Session, error) {
	if token == "" {
		return nil, remote.ErrMissingCredential
	}
	return &remote.Session{SID: "sid-test", UserID: 1}, nil
}

func (f *fakeRemoteAPI) Logout(_ context.Context, _ *remote.Session) {}

func (f *fakeRemoteAPI) ResolveResource(_ context.Context, _ *remote.Session, name string) (*remote.Resource, error) {
	return &remote.Resource{ID: 555, Name: name}, nil
}

func (f *fakeRemoteAPI) SearchUnits(_ context.Context, _ *remote.Session) ([]remote.Unit, error) {
	return f.units, nil
}

func (f *fakeRemoteAPI) UpdateNotification(_ context.Context, _ *remote.Session, payload *wire.Payload) (int64, error) {
	f.payloads = append(f.payloads, payload)
	if f.failMutate {
		return 0, &remote.APIError{Service: "resource/update_notification", Code: 7, Message: "access denied"}
	}
	if payload.CallMode == wire.CallModeCreate {
		f.nextID++
		return f.nextID + 1000, nil
	}
	return payload.ID, nil
}

func setupNotificationService(t *testing.T) (*NotificationService, *fakeNotificationsRepo, *fakeCustomersRepo, *fakeRemoteAPI, string) {
	t.Helper()

	notificationsRepo := newFakeNotificationsRepo()
	customersRepo := newFakeCustomersRepo()
	remoteAPI := &fakeRemoteAPI{}

	customerID := uuid.New().String()
	customersRepo.rows[customerID] = &domain.Customer{
		ID:       customerID,
		Username: "fleet@example.com",
		Token:    "remote-token",
	}

	svc := NewNotificationService(
		notificationsRepo, customersRepo, remoteAPI,
		nil, "", "https://api.terminusgps.com/v2/notify", "terminusgps_notifications",
		zap.NewNop(),
	)

	return svc, notificationsRepo, customersRepo, remoteAPI, customerID
}

func draftNotification() *domain.Notification {
	return &domain.Notification{
		Name:    "Ignition alert",
		Message: "Unit %UNIT% ignition changed",
		Method:  domain.MethodSMS,
		TriggerKind: trigger.KindSensorValue,
		TriggerParams: &trigger.SensorValueParams{
			LowerBound:     -1.0,
			UpperBound:     1.0,
			SensorNameMask: "*IGN*",
		},
		UnitIDs:  []int64{1001, 1002},
		Language: "en",
	}
}

// ============================================
// 创建
// ============================================

func TestCreateNotification_RemoteFirst(t *testing.T) {
	svc, repo, customers, remoteAPI, customerID := setupNotificationService(t)

	created, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.NoError(t, err)

	// 远程标识来自平台响应
	assert.Equal(t, int64(1001), created.RemoteID)
	assert.True(t, created.Enabled)

	// 本地落地
	stored, err := repo.GetNotification(context.Background(), customerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.RemoteID, stored.RemoteID)

	// 派生字段已渲染
	assert.NotEmpty(t, stored.Text)
	assert.NotEmpty(t, stored.Actions)

	// 远程调用形态
	require.Len(t, remoteAPI.payloads, 1)
	assert.Equal(t, wire.CallModeCreate, remoteAPI.payloads[0].CallMode)
	assert.Equal(t, int64(0), remoteAPI.payloads[0].ID)
	assert.Equal(t, int64(555), remoteAPI.payloads[0].ItemID)

	// 解析到的资源标识已回写
	c, err := customers.GetCustomer(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(555), c.ResourceID)
}

func TestCreateNotification_RemoteFailureLeavesNoRow(t *testing.T) {
	svc, repo, _, remoteAPI, customerID := setupNotificationService(t)
	remoteAPI.failMutate = true

	_, err := svc.CreateNotification(context.Background(), customerID, draftNotification())

	var apiErr *remote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, repo.rows)
}

func TestCreateNotification_LocalFailureCompensates(t *testing.T) {
	svc, repo, _, remoteAPI, customerID := setupNotificationService(t)
	repo.failCreate = true

	_, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.Error(t, err)

	// 远程 create 之后必须跟补偿 delete
	require.Len(t, remoteAPI.payloads, 2)
	assert.Equal(t, wire.CallModeCreate, remoteAPI.payloads[0].CallMode)
	assert.Equal(t, wire.CallModeDelete, remoteAPI.payloads[1].CallMode)
	assert.NotZero(t, remoteAPI.payloads[1].ID)
}

func TestCreateNotification_MissingCredential(t *testing.T) {
	svc, _, customers, remoteAPI, customerID := setupNotificationService(t)
	customers.rows[customerID].Token = ""

	_, err := svc.CreateNotification(context.Background(), customerID, draftNotification())

	assert.ErrorIs(t, err, remote.ErrMissingCredential)
	assert.Empty(t, remoteAPI.payloads, "no remote call without credential")
}

func TestCreateNotification_InvalidEntity(t *testing.T) {
	svc, _, _, remoteAPI, customerID := setupNotificationService(t)

	n := draftNotification()
	n.Name = ""
	n.AlarmTimeout = 1801

	_, err := svc.CreateNotification(context.Background(), customerID, n)

	var vErr *trigger.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.True(t, vErr.HasField("name"))
	assert.True(t, vErr.HasField("alarm_timeout"))
	assert.Empty(t, remoteAPI.payloads, "validation errors never reach the synchronizer")
}

// ============================================
// 更新 / 删除
// ============================================

func TestUpdateNotification_RemoteFailureKeepsLocal(t *testing.T) {
	svc, repo, _, remoteAPI, customerID := setupNotificationService(t)

	created, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.NoError(t, err)

	remoteAPI.failMutate = true

	modified := *created
	modified.Message = "changed"
	_, err = svc.UpdateNotification(context.Background(), customerID, &modified)
	require.Error(t, err)

	stored, err := repo.GetNotification(context.Background(), customerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unit %UNIT% ignition changed", stored.Message, "local row must be untouched")
}

func TestUpdateNotification_RerendersDerivedFields(t *testing.T) {
	svc, repo, _, remoteAPI, customerID := setupNotificationService(t)

	created, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.NoError(t, err)

	modified := *created
	modified.Message = "New template"
	modified.Method = domain.MethodVoice
	modified.RemoteID = 99999 // 外部传入的远程标识必须被忽略

	updated, err := svc.UpdateNotification(context.Background(), customerID, &modified)
	require.NoError(t, err)

	assert.Equal(t, created.RemoteID, updated.RemoteID, "remote id is immutable")
	assert.Contains(t, updated.Text, "New+template")
	assert.Contains(t, string(updated.Actions), "/voice")

	stored, err := repo.GetNotification(context.Background(), customerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Text, stored.Text)

	last := remoteAPI.payloads[len(remoteAPI.payloads)-1]
	assert.Equal(t, wire.CallModeUpdate, last.CallMode)
	assert.Equal(t, created.RemoteID, last.ID)
}

func TestUpdateNotification_NoChangeSkipsRemote(t *testing.T) {
	svc, repo, _, remoteAPI, customerID := setupNotificationService(t)

	created, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.NoError(t, err)
	require.Len(t, remoteAPI.payloads, 1)

	// 原样重提交：远程零调用，本地不写
	resubmit := *created
	updated, err := svc.UpdateNotification(context.Background(), customerID, &resubmit)
	require.NoError(t, err)

	assert.Len(t, remoteAPI.payloads, 1, "a no-change update must not trigger a remote call")
	assert.Equal(t, created.RemoteID, updated.RemoteID)
	assert.Equal(t, created.UpdatedAt, updated.UpdatedAt)

	// 真实变化仍然走远程
	resubmit.Timezone = 3600
	_, err = svc.UpdateNotification(context.Background(), customerID, &resubmit)
	require.NoError(t, err)
	require.Len(t, remoteAPI.payloads, 2)
	assert.Equal(t, wire.CallModeUpdate, remoteAPI.payloads[1].CallMode)

	stored, err := repo.GetNotification(context.Background(), customerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3600, stored.Timezone)
}

func TestDeleteNotification_RemoteFirst(t *testing.T) {
	svc, repo, _, remoteAPI, customerID := setupNotificationService(t)

	created, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNotification(context.Background(), customerID, created.ID))

	assert.Empty(t, repo.rows)
	last := remoteAPI.payloads[len(remoteAPI.payloads)-1]
	assert.Equal(t, wire.CallModeDelete, last.CallMode)
	assert.Equal(t, created.RemoteID, last.ID)
}

func TestDeleteNotification_RemoteFailureKeepsLocal(t *testing.T) {
	svc, repo, _, remoteAPI, customerID := setupNotificationService(t)

	created, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.NoError(t, err)

	remoteAPI.failMutate = true

	err = svc.DeleteNotification(context.Background(), customerID, created.ID)
	require.Error(t, err)

	_, err = repo.GetNotification(context.Background(), customerID, created.ID)
	assert.NoError(t, err, "local row must survive a failed remote delete")
}

// ============================================
// 启用 / 禁用
// ============================================

func TestSetEnabled_IdempotentNoOp(t *testing.T) {
	svc, _, _, remoteAPI, customerID := setupNotificationService(t)

	created, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.NoError(t, err)

	calls := len(remoteAPI.payloads)

	// 已启用状态下再启用：零远程调用
	n, err := svc.SetEnabled(context.Background(), customerID, created.ID, true)
	require.NoError(t, err)
	assert.True(t, n.Enabled)
	assert.Len(t, remoteAPI.payloads, calls, "idempotent no-op must not call remote")
}

func TestSetEnabled_Disable(t *testing.T) {
	svc, repo, _, remoteAPI, customerID := setupNotificationService(t)

	created, err := svc.CreateNotification(context.Background(), customerID, draftNotification())
	require.NoError(t, err)

	n, err := svc.SetEnabled(context.Background(), customerID, created.ID, false)
	require.NoError(t, err)
	assert.False(t, n.Enabled)

	stored, err := repo.GetNotification(context.Background(), customerID, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Enabled)

	last := remoteAPI.payloads[len(remoteAPI.payloads)-1]
	assert.Equal(t, wire.CallModeUpdate, last.CallMode)
	assert.Zero(t, last.Flags&wire.FlagEnabled)
}

func TestListUnits(t *testing.T) {
	svc, _, _, remoteAPI, customerID := setupNotificationService(t)
	remoteAPI.units = []remote.Unit{{ID: 1001, Name: "Unit #1"}}

	units, err := svc.ListUnits(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, int64(1001), units[0].ID)
}
