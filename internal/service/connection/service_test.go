// Package connection 连接管理与解析单元测试
package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/secret"
	"github.com/ZulfikarHD/inkwell/internal/testutil"
)

// mockConnectionRepo 内存实现，按插入顺序返回列表
type mockConnectionRepo struct {
	conns []*model.Connection
}

func (m *mockConnectionRepo) Create(conn *model.Connection) error {
	m.conns = append(m.conns, conn)
	return nil
}

func (m *mockConnectionRepo) GetByID(id string) (*model.Connection, error) {
	for _, c := range m.conns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *mockConnectionRepo) ListByUser(userID string) ([]*model.Connection, error) {
	var out []*model.Connection
	for _, c := range m.conns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConnectionRepo) ListActiveByUser(userID string) ([]*model.Connection, error) {
	var out []*model.Connection
	for _, c := range m.conns {
		if c.UserID == userID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConnectionRepo) GetDefaultByUser(userID string) (*model.Connection, error) {
	for _, c := range m.conns {
		if c.UserID == userID && c.IsDefault && c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockConnectionRepo) Update(conn *model.Connection) error { return nil }

func (m *mockConnectionRepo) Delete(id string) error {
	for i, c := range m.conns {
		if c.ID == id {
			m.conns = append(m.conns[:i], m.conns[i+1:]...)
			return nil
		}
	}
	return errors.New("record not found")
}

func (m *mockConnectionRepo) SetDefault(userID, connectionID string) error {
	for _, c := range m.conns {
		if c.UserID == userID {
			c.IsDefault = c.ID == connectionID
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *mockConnectionRepo) {
	t.Helper()
	cipher, err := secret.NewCipher("")
	if err != nil {
		t.Fatalf("NewCipher() error: %v", err)
	}
	repo := &mockConnectionRepo{}
	return NewService(repo, cipher), repo
}

// ========== Create 测试 ==========

func TestCreate_EncryptsAPIKey(t *testing.T) {
	svc, repo := newTestService(t)

	conn, err := svc.Create(context.Background(), "user-1", &CreateConnectionRequest{
		Provider: "openai",
		APIKey:   "sk-plain",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if conn.APIKeyEncrypted == "sk-plain" {
		t.Error("api key should be stored encrypted")
	}
	if conn.Name != "openai" {
		t.Errorf("Name = %q, want provider fallback 'openai'", conn.Name)
	}
	if !conn.IsActive {
		t.Error("new connections should be active")
	}

	key, err := svc.APIKey(repo.conns[0])
	if err != nil {
		t.Fatalf("APIKey() error: %v", err)
	}
	if key != "sk-plain" {
		t.Errorf("APIKey() = %q, want 'sk-plain'", key)
	}
}

func TestCreate_UnsupportedProvider(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), "user-1", &CreateConnectionRequest{Provider: "skynet"}); err == nil {
		t.Error("unsupported provider should fail")
	}
}

func TestCreate_SetsDefault(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "openai", IsDefault: true})
	second, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "anthropic", IsDefault: true})

	// 默认连接唯一，后来者取代前者
	got, _ := svc.Get(ctx, "user-1", first.ID)
	if got.IsDefault {
		t.Error("first connection should no longer be default")
	}
	got, _ = svc.Get(ctx, "user-1", second.ID)
	if !got.IsDefault {
		t.Error("second connection should be default")
	}
}

// ========== 归属校验 测试 ==========

func TestGet_WrongOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conn, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "openai"})

	if _, err := svc.Get(ctx, "user-2", conn.ID); err == nil {
		t.Error("another user should not read the connection")
	}
	if err := svc.Delete(ctx, "user-2", conn.ID); err == nil {
		t.Error("another user should not delete the connection")
	}
}

// ========== Resolve 测试 ==========

func conv(userID string, connectionID *string) *model.Conversation {
	c := testutil.NewConversation(userID, "novel-1")
	c.ConnectionID = connectionID
	return c
}

func TestResolve_ExplicitWins(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pinned, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "openai", IsDefault: true})
	explicit, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "anthropic"})

	got, err := svc.Resolve(ctx, conv("user-1", &pinned.ID), explicit.ID, "user-1")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.ID != explicit.ID {
		t.Errorf("Resolve() = %s, want explicit %s", got.ID, explicit.ID)
	}
}

func TestResolve_ExplicitOtherUserFallsThrough(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	foreign, _ := svc.Create(ctx, "user-2", &CreateConnectionRequest{Provider: "openai"})
	own, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "deepseek", IsDefault: true})

	got, err := svc.Resolve(ctx, conv("user-1", nil), foreign.ID, "user-1")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.ID != own.ID {
		t.Errorf("explicit id of another user should fall through to default, got %s", got.ID)
	}
}

func TestResolve_ConversationPinned(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "openai", IsDefault: true})
	pinned, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "mistral"})

	got, err := svc.Resolve(ctx, conv("user-1", &pinned.ID), "", "user-1")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.ID != pinned.ID {
		t.Errorf("Resolve() = %s, want pinned %s", got.ID, pinned.ID)
	}
}

func TestResolve_InactivePinnedFallsThrough(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inactive := false
	pinned, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "openai"})
	svc.Update(ctx, "user-1", pinned.ID, &UpdateConnectionRequest{IsActive: &inactive})
	fallback, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "deepseek", IsDefault: true})

	got, err := svc.Resolve(ctx, conv("user-1", &pinned.ID), "", "user-1")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.ID != fallback.ID {
		t.Errorf("inactive pinned connection should fall through, got %s", got.ID)
	}
}

func TestResolve_DefaultThenFirstActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "openai"})
	second, _ := svc.Create(ctx, "user-1", &CreateConnectionRequest{Provider: "anthropic"})

	// 无默认时取第一个活跃连接
	got, err := svc.Resolve(ctx, conv("user-1", nil), "", "user-1")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("Resolve() = %s, want first active %s", got.ID, first.ID)
	}

	// 设置默认后优先默认
	svc.SetDefault(ctx, "user-1", second.ID)
	got, _ = svc.Resolve(ctx, conv("user-1", nil), "", "user-1")
	if got.ID != second.ID {
		t.Errorf("Resolve() = %s, want default %s", got.ID, second.ID)
	}
}

func TestResolve_NoConnections(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Resolve(context.Background(), conv("user-1", nil), "", "user-1")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != nil {
		t.Errorf("Resolve() = %v, want nil", got)
	}
}
