// Package chat 测试用内存仓库
package chat

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZulfikarHD/inkwell/internal/llm"
	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/repository"
	"github.com/ZulfikarHD/inkwell/internal/secret"
	"github.com/ZulfikarHD/inkwell/internal/service/connection"
	"github.com/ZulfikarHD/inkwell/internal/service/notify"
	"github.com/ZulfikarHD/inkwell/internal/testutil"
)

var errNotFound = errors.New("record not found")

// ========== ChatRepository mock ==========

type mockChatRepo struct {
	convs map[string]*model.Conversation
	turns []*model.Turn
	items []*model.ContextItem

	createTurnErr error
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{convs: make(map[string]*model.Conversation)}
}

func (m *mockChatRepo) CreateConversation(conv *model.Conversation) error {
	m.convs[conv.ID] = conv
	return nil
}

func (m *mockChatRepo) GetConversationByID(id string) (*model.Conversation, error) {
	conv, ok := m.convs[id]
	if !ok {
		return nil, errNotFound
	}
	return conv, nil
}

func (m *mockChatRepo) ListConversations(userID, novelID string, includeArchived bool, offset, limit int) ([]*model.Conversation, error) {
	var out []*model.Conversation
	for _, c := range m.convs {
		if c.UserID != userID {
			continue
		}
		if novelID != "" && c.NovelID != novelID {
			continue
		}
		if !includeArchived && c.IsArchived {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockChatRepo) UpdateConversation(conv *model.Conversation) error {
	if _, ok := m.convs[conv.ID]; !ok {
		return errNotFound
	}
	m.convs[conv.ID] = conv
	return nil
}

func (m *mockChatRepo) DeleteConversation(id string) error {
	delete(m.convs, id)
	return nil
}

func (m *mockChatRepo) CreateTurn(turn *model.Turn) error {
	if m.createTurnErr != nil {
		return m.createTurnErr
	}
	m.turns = append(m.turns, turn)
	return nil
}

func (m *mockChatRepo) GetTurnByID(id string) (*model.Turn, error) {
	for _, t := range m.turns {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errNotFound
}

func (m *mockChatRepo) ListTurns(conversationID string) ([]*model.Turn, error) {
	var out []*model.Turn
	for _, t := range m.turns {
		if t.ConversationID == conversationID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockChatRepo) GetLatestAssistantTurn(conversationID string) (*model.Turn, error) {
	var last *model.Turn
	for _, t := range m.turns {
		if t.ConversationID == conversationID && t.Role == model.RoleAssistant {
			last = t
		}
	}
	return last, nil
}

func (m *mockChatRepo) DeleteTurn(id string) error {
	for i, t := range m.turns {
		if t.ID == id {
			m.turns = append(m.turns[:i], m.turns[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *mockChatRepo) CreateContextItem(item *model.ContextItem) error {
	m.items = append(m.items, item)
	return nil
}

func (m *mockChatRepo) GetContextItemByID(id string) (*model.ContextItem, error) {
	for _, it := range m.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, errNotFound
}

func (m *mockChatRepo) FindContextItem(conversationID, itemType, referenceID string) (*model.ContextItem, error) {
	for _, it := range m.items {
		if it.ConversationID == conversationID && it.ItemType == itemType && it.ReferenceID == referenceID {
			return it, nil
		}
	}
	return nil, nil
}

func (m *mockChatRepo) ListContextItems(conversationID string) ([]*model.ContextItem, error) {
	var out []*model.ContextItem
	for _, it := range m.items {
		if it.ConversationID == conversationID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockChatRepo) UpdateContextItem(item *model.ContextItem) error { return nil }

func (m *mockChatRepo) DeleteContextItem(id string) error {
	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

// ========== NovelRepository mock ==========

type mockNovelRepo struct {
	novels map[string]*model.Novel
	scenes []*model.Scene
}

func newMockNovelRepo() *mockNovelRepo {
	return &mockNovelRepo{novels: make(map[string]*model.Novel)}
}

func (m *mockNovelRepo) CreateNovel(novel *model.Novel) error {
	m.novels[novel.ID] = novel
	return nil
}

func (m *mockNovelRepo) GetNovelByID(id string) (*model.Novel, error) {
	n, ok := m.novels[id]
	if !ok {
		return nil, errNotFound
	}
	return n, nil
}

func (m *mockNovelRepo) ListNovels(userID string, offset, limit int) ([]*model.Novel, error) {
	return nil, nil
}

func (m *mockNovelRepo) UpdateNovel(novel *model.Novel) error { return nil }
func (m *mockNovelRepo) DeleteNovel(id string) error          { return nil }

func (m *mockNovelRepo) CreateScene(scene *model.Scene) error {
	m.scenes = append(m.scenes, scene)
	return nil
}

func (m *mockNovelRepo) GetSceneByID(id string) (*model.Scene, error) {
	for _, s := range m.scenes {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errNotFound
}

func (m *mockNovelRepo) ListScenes(novelID string) ([]*model.Scene, error) {
	var out []*model.Scene
	for _, s := range m.scenes {
		if s.NovelID == novelID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockNovelRepo) UpdateScene(scene *model.Scene) error { return nil }
func (m *mockNovelRepo) DeleteScene(id string) error          { return nil }
func (m *mockNovelRepo) CreateLabel(label *model.Label) error { return nil }
func (m *mockNovelRepo) ListLabels(novelID string) ([]*model.Label, error) {
	return nil, nil
}
func (m *mockNovelRepo) DeleteLabel(id string) error               { return nil }
func (m *mockNovelRepo) AttachLabel(sceneID, labelID string) error { return nil }
func (m *mockNovelRepo) DetachLabel(sceneID, labelID string) error { return nil }

// ========== CodexRepository mock ==========

type mockCodexRepo struct {
	entries map[string]*model.CodexEntry
}

func newMockCodexRepo() *mockCodexRepo {
	return &mockCodexRepo{entries: make(map[string]*model.CodexEntry)}
}

func (m *mockCodexRepo) Create(entry *model.CodexEntry) error {
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockCodexRepo) GetByID(id string) (*model.CodexEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, errNotFound
	}
	return e, nil
}

func (m *mockCodexRepo) ListByNovel(novelID string, entryType string) ([]*model.CodexEntry, error) {
	return nil, nil
}

func (m *mockCodexRepo) Update(entry *model.CodexEntry) error { return nil }
func (m *mockCodexRepo) Delete(id string) error               { return nil }

// ========== ConnectionRepository mock ==========

type mockConnRepo struct {
	conns []*model.Connection
}

func (m *mockConnRepo) Create(conn *model.Connection) error {
	m.conns = append(m.conns, conn)
	return nil
}

func (m *mockConnRepo) GetByID(id string) (*model.Connection, error) {
	for _, c := range m.conns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errNotFound
}

func (m *mockConnRepo) ListByUser(userID string) ([]*model.Connection, error) { return nil, nil }

func (m *mockConnRepo) ListActiveByUser(userID string) ([]*model.Connection, error) {
	var out []*model.Connection
	for _, c := range m.conns {
		if c.UserID == userID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConnRepo) GetDefaultByUser(userID string) (*model.Connection, error) {
	for _, c := range m.conns {
		if c.UserID == userID && c.IsDefault && c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockConnRepo) Update(conn *model.Connection) error          { return nil }
func (m *mockConnRepo) Delete(id string) error                       { return nil }
func (m *mockConnRepo) SetDefault(userID, connectionID string) error { return nil }

// 编译期校验 mock 覆盖完整接口
var (
	_ repository.ChatRepository       = (*mockChatRepo)(nil)
	_ repository.NovelRepository      = (*mockNovelRepo)(nil)
	_ repository.CodexRepository      = (*mockCodexRepo)(nil)
	_ repository.ConnectionRepository = (*mockConnRepo)(nil)
)

// ========== 测试环境 ==========

// testEnv 组装好的聊天服务与各 mock
type testEnv struct {
	svc    *Service
	chat   *mockChatRepo
	novels *mockNovelRepo
	codex  *mockCodexRepo
	conns  *mockConnRepo
	cipher *secret.Cipher
}

// newTestEnv 构建测试服务，sseBody 为上游返回的 SSE 响应体
func newTestEnv(t *testing.T, sseBody string) *testEnv {
	t.Helper()
	return newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody)
	}))
}

// newTestEnvWithStatus 构建上游返回固定错误状态的测试服务
func newTestEnvWithStatus(t *testing.T, status int, body string) *testEnv {
	t.Helper()
	return newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func newEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cipher, err := secret.NewCipher("")
	if err != nil {
		t.Fatalf("NewCipher() error: %v", err)
	}

	env := &testEnv{
		chat:   newMockChatRepo(),
		novels: newMockNovelRepo(),
		codex:  newMockCodexRepo(),
		conns:  &mockConnRepo{},
		cipher: cipher,
	}

	connSvc := connection.NewService(env.conns, cipher)
	client := llm.NewClientWithHTTPClient(testutil.NewTestClient(ts))
	env.svc = NewService(env.chat, env.novels, env.codex, connSvc, client, notify.NewNotifier(nil))
	return env
}

// seedConversation 预置一部小说与一个会话
func (env *testEnv) seedConversation(userID string) *model.Conversation {
	novel := testutil.NewNovel(userID)
	env.novels.CreateNovel(novel)

	conv := testutil.NewConversation(userID, novel.ID)
	env.chat.CreateConversation(conv)
	return conv
}

// seedConnection 预置一个活跃连接
func (env *testEnv) seedConnection(userID, provider string) *model.Connection {
	conn := testutil.NewConnection(userID, provider)
	enc, _ := env.cipher.Encrypt("sk-test")
	conn.APIKeyEncrypted = enc
	env.conns.Create(conn)
	return conn
}
