// Package chat 编排器单元测试
package chat

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/ZulfikarHD/inkwell/internal/model"
)

const happySSE = "data: {\"choices\":[{\"delta\":{\"content\":\"Once \"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"upon\"}}]}\n\n" +
	"data: {\"usage\":{\"prompt_tokens\":42,\"completion_tokens\":7}}\n\n" +
	"data: [DONE]\n\n"

// drain 读完整个流
func drain(t *testing.T, st *ChatStream) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	for {
		ev, err := st.Recv()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Recv() error: %v", err)
		}
		events = append(events, *ev)
	}
}

func eventTypes(events []StreamEvent) []string {
	var types []string
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

// ========== Send 测试 ==========

func TestSend_HappyPath(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")

	st := env.svc.Send(context.Background(), "user-1", conv.ID, &SendRequest{Content: "Write the opening line."})
	events := drain(t, st)

	want := []string{EventUserMessage, EventContent, EventContent, EventDone}
	got := eventTypes(events)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("event types = %v, want %v", got, want)
	}

	// 用户消息和助手回复都已持久化
	turns, _ := env.chat.ListTurns(conv.ID)
	if len(turns) != 2 {
		t.Fatalf("persisted %d turns, want 2", len(turns))
	}
	if turns[0].Role != model.RoleUser || turns[0].Content != "Write the opening line." {
		t.Errorf("user turn = %+v", turns[0])
	}

	assistant := turns[1]
	if assistant.Role != model.RoleAssistant {
		t.Fatalf("second turn role = %q", assistant.Role)
	}
	if assistant.Content != "Once upon" {
		t.Errorf("assistant content = %q, want 'Once upon'", assistant.Content)
	}
	if assistant.ModelUsed != "gpt-4o-mini" {
		t.Errorf("ModelUsed = %q, want provider default", assistant.ModelUsed)
	}
	if assistant.InputTokens != 42 || assistant.OutputTokens != 7 {
		t.Errorf("tokens = %d/%d, want 42/7", assistant.InputTokens, assistant.OutputTokens)
	}
	if assistant.ContextUsed == nil {
		t.Error("assistant turn should carry the context snapshot")
	}

	// done 事件引用助手消息；send 不回传 model_used
	done := events[len(events)-1]
	if done.MessageID != assistant.ID {
		t.Errorf("done.MessageID = %q, want %q", done.MessageID, assistant.ID)
	}
	if done.ModelUsed != "" {
		t.Errorf("done.ModelUsed = %q, want empty for send", done.ModelUsed)
	}

	// user_message 事件引用用户消息
	if events[0].MessageID != turns[0].ID {
		t.Errorf("user_message.MessageID = %q, want %q", events[0].MessageID, turns[0].ID)
	}
}

func TestSend_SnapshotPersistedBeforeContent(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")

	if _, err := env.svc.AddContextItem(context.Background(), "user-1", conv.ID, &AddContextItemRequest{
		ItemType: model.ContextItemCustom,
		Content:  "Elena is the protagonist.",
	}); err != nil {
		t.Fatalf("AddContextItem() error: %v", err)
	}

	st := env.svc.Send(context.Background(), "user-1", conv.ID, &SendRequest{Content: "Continue the scene."})
	defer st.Close()

	// 只读第一个事件：此时还没有任何 content 返回
	ev, err := st.Recv()
	if err != nil {
		t.Fatalf("Recv() error: %v", err)
	}
	if ev.Type != EventUserMessage {
		t.Fatalf("first event = %q, want %q", ev.Type, EventUserMessage)
	}

	// 用户消息已持久化且携带完整的上下文快照
	turns, _ := env.chat.ListTurns(conv.ID)
	if len(turns) != 1 {
		t.Fatalf("persisted %d turns before streaming, want 1", len(turns))
	}
	snap := turns[0].ContextUsed
	if snap == nil {
		t.Fatal("user turn should carry the context snapshot")
	}
	if len(snap.Items) != 1 {
		t.Fatalf("snapshot has %d items, want 1", len(snap.Items))
	}
	if snap.Items[0].Type != model.ContextItemCustom {
		t.Errorf("snapshot item type = %q, want %q", snap.Items[0].Type, model.ContextItemCustom)
	}
	if snap.Items[0].Name != "Elena is the protagonist." {
		t.Errorf("snapshot item name = %q, want the custom text", snap.Items[0].Name)
	}
}

func TestSend_DerivesTitle(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")

	long := strings.Repeat("а", 60) // 多字节字符验证按 rune 截断
	drain(t, env.svc.Send(context.Background(), "user-1", conv.ID, &SendRequest{Content: long}))

	got, _ := env.chat.GetConversationByID(conv.ID)
	if len([]rune(got.Title)) != 50 {
		t.Errorf("derived title rune length = %d, want 50", len([]rune(got.Title)))
	}
}

func TestSend_KeepsExistingTitle(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	conv.Title = "My draft session"
	env.seedConnection("user-1", "openai")

	drain(t, env.svc.Send(context.Background(), "user-1", conv.ID, &SendRequest{Content: "hello"}))

	got, _ := env.chat.GetConversationByID(conv.ID)
	if got.Title != "My draft session" {
		t.Errorf("title = %q, should not be overwritten", got.Title)
	}
}

func TestSend_NoConnection(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")

	events := drain(t, env.svc.Send(context.Background(), "user-1", conv.ID, &SendRequest{Content: "hello"}))

	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events = %v, want single error", events)
	}
	if !strings.Contains(events[0].Error, "no usable model connection") {
		t.Errorf("error = %q", events[0].Error)
	}

	// 连接缺失时不持久化任何消息
	turns, _ := env.chat.ListTurns(conv.ID)
	if len(turns) != 0 {
		t.Errorf("persisted %d turns, want 0", len(turns))
	}
}

func TestSend_ConversationNotFound(t *testing.T) {
	env := newTestEnv(t, happySSE)

	events := drain(t, env.svc.Send(context.Background(), "user-1", "missing", &SendRequest{Content: "hi"}))
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events = %v, want single error", events)
	}
}

func TestSend_WrongOwner(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-2", "openai")

	events := drain(t, env.svc.Send(context.Background(), "user-2", conv.ID, &SendRequest{Content: "hi"}))
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events = %v, want single error", events)
	}
}

func TestSend_ConversationBusy(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")
	ctx := context.Background()

	first := env.svc.Send(ctx, "user-1", conv.ID, &SendRequest{Content: "one"})
	defer first.Close()

	// 第一条流未结束时，同一会话的第二次请求被拒绝
	second := env.svc.Send(ctx, "user-1", conv.ID, &SendRequest{Content: "two"})
	events := drain(t, second)
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events = %v, want single error", events)
	}
	if !strings.Contains(events[0].Error, "already running") {
		t.Errorf("error = %q", events[0].Error)
	}

	// 第一条流结束后锁释放，可再次发送
	drain(t, first)
	third := env.svc.Send(ctx, "user-1", conv.ID, &SendRequest{Content: "three"})
	events = drain(t, third)
	if events[0].Type != EventUserMessage {
		t.Errorf("after release, first event = %v", events[0])
	}
}

func TestSend_UpstreamError_KeepsUserTurn(t *testing.T) {
	// 上游返回 401，流在用户消息持久化之后才失败
	env := newTestEnvWithStatus(t, 401, `{"error":{"message":"invalid api key"}}`)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")

	events := drain(t, env.svc.Send(context.Background(), "user-1", conv.ID, &SendRequest{Content: "hello"}))

	got := eventTypes(events)
	want := []string{EventUserMessage, EventError}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("event types = %v, want %v", got, want)
	}
	if events[1].Error != "invalid api key" {
		t.Errorf("error = %q, want upstream message", events[1].Error)
	}

	// 用户消息保留，助手消息不持久化
	turns, _ := env.chat.ListTurns(conv.ID)
	if len(turns) != 1 || turns[0].Role != model.RoleUser {
		t.Errorf("turns = %+v, want only the user turn", turns)
	}
}

func TestSend_ModelPrecedence(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	conv.ModelName = "gpt-4o"
	env.seedConnection("user-1", "openai")
	ctx := context.Background()

	// 请求级覆盖优先
	drain(t, env.svc.Send(ctx, "user-1", conv.ID, &SendRequest{Content: "a", ModelName: "gpt-4-turbo"}))
	turns, _ := env.chat.ListTurns(conv.ID)
	if turns[1].ModelUsed != "gpt-4-turbo" {
		t.Errorf("ModelUsed = %q, want request override", turns[1].ModelUsed)
	}

	// 无覆盖时用会话固定模型
	drain(t, env.svc.Send(ctx, "user-1", conv.ID, &SendRequest{Content: "b"}))
	turns, _ = env.chat.ListTurns(conv.ID)
	if turns[3].ModelUsed != "gpt-4o" {
		t.Errorf("ModelUsed = %q, want conversation model", turns[3].ModelUsed)
	}
}

// ========== Regenerate 测试 ==========

// seedExchange 预置一轮 user/assistant 往返
func seedExchange(env *testEnv, conv *model.Conversation) (*model.Turn, *model.Turn) {
	user := &model.Turn{ID: "turn-user", ConversationID: conv.ID, Role: model.RoleUser, Content: "Describe the harbor."}
	assistant := &model.Turn{ID: "turn-assistant", ConversationID: conv.ID, Role: model.RoleAssistant, Content: "old reply", ModelUsed: "gpt-4o"}
	env.chat.CreateTurn(user)
	env.chat.CreateTurn(assistant)
	return user, assistant
}

func TestRegenerate_HappyPath(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")
	_, oldAssistant := seedExchange(env, conv)

	st := env.svc.Regenerate(context.Background(), "user-1", conv.ID, &RegenerateRequest{})
	events := drain(t, st)

	// regenerate 不产出 user_message 事件
	want := []string{EventContent, EventContent, EventDone}
	got := eventTypes(events)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("event types = %v, want %v", got, want)
	}

	// 旧回复被替换
	turns, _ := env.chat.ListTurns(conv.ID)
	if len(turns) != 2 {
		t.Fatalf("persisted %d turns, want 2", len(turns))
	}
	if turns[1].ID == oldAssistant.ID {
		t.Error("old assistant turn should be deleted")
	}
	if turns[1].Content != "Once upon" {
		t.Errorf("new assistant content = %q", turns[1].Content)
	}

	// regenerate 的 done 事件回传 model_used
	done := events[len(events)-1]
	if done.ModelUsed != "gpt-4o-mini" {
		t.Errorf("done.ModelUsed = %q, want 'gpt-4o-mini'", done.ModelUsed)
	}
}

func TestRegenerate_NoAssistantTurn(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")

	events := drain(t, env.svc.Regenerate(context.Background(), "user-1", conv.ID, &RegenerateRequest{}))
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events = %v, want single error", events)
	}
	if !strings.Contains(events[0].Error, "no assistant message") {
		t.Errorf("error = %q", events[0].Error)
	}
}

func TestRegenerate_NoPrecedingUser(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")

	// 只有一条助手消息，没有前置用户消息
	env.chat.CreateTurn(&model.Turn{ID: "orphan", ConversationID: conv.ID, Role: model.RoleAssistant, Content: "hi"})

	events := drain(t, env.svc.Regenerate(context.Background(), "user-1", conv.ID, &RegenerateRequest{}))
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events = %v, want single error", events)
	}

	// 失败路径不得删除既有消息
	turns, _ := env.chat.ListTurns(conv.ID)
	if len(turns) != 1 {
		t.Errorf("turns = %d, want untouched 1", len(turns))
	}
}

func TestRegenerate_NoConnection_KeepsOldReply(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	_, oldAssistant := seedExchange(env, conv)

	events := drain(t, env.svc.Regenerate(context.Background(), "user-1", conv.ID, &RegenerateRequest{}))
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events = %v, want single error", events)
	}

	// 连接解析失败先于删除，旧回复必须保留
	if _, err := env.chat.GetTurnByID(oldAssistant.ID); err != nil {
		t.Error("old assistant turn should survive a failed regenerate")
	}
}

// ========== ChatStream 测试 ==========

func TestChatStream_CloseReleasesLock(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")
	ctx := context.Background()

	st := env.svc.Send(ctx, "user-1", conv.ID, &SendRequest{Content: "hello"})
	st.Close()

	// Close 后锁立即释放
	again := env.svc.Send(ctx, "user-1", conv.ID, &SendRequest{Content: "again"})
	ev, err := again.Recv()
	if err != nil {
		t.Fatalf("Recv() error: %v", err)
	}
	if ev.Type != EventUserMessage {
		t.Errorf("first event after reacquire = %v", ev)
	}
	again.Close()
}

func TestChatStream_AbortedStreamNotPersisted(t *testing.T) {
	env := newTestEnv(t, happySSE)
	conv := env.seedConversation("user-1")
	env.seedConnection("user-1", "openai")

	st := env.svc.Send(context.Background(), "user-1", conv.ID, &SendRequest{Content: "hello"})

	// 读到第一个 content 事件后客户端断开
	for {
		ev, err := st.Recv()
		if err != nil {
			t.Fatalf("Recv() error: %v", err)
		}
		if ev.Type == EventContent {
			break
		}
	}
	st.Close()

	// 中断的生成不持久化助手消息
	turns, _ := env.chat.ListTurns(conv.ID)
	if len(turns) != 1 || turns[0].Role != model.RoleUser {
		t.Errorf("turns = %+v, want only the user turn", turns)
	}
}
