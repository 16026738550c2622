package chat

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ZulfikarHD/inkwell/internal/llm"
	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/service/notify"
)

// 对外事件类型
const (
	EventUserMessage = "user_message"
	EventContent     = "content"
	EventDone        = "done"
	EventError       = "error"
)

// 会话标题截取自首条用户消息的最大长度
const maxDerivedTitleLen = 50

// personaPreamble 助手角色设定，系统消息的固定开头
const personaPreamble = "You are a thoughtful writing assistant embedded in the author's workspace. " +
	"Ground your answers in the story context provided below, stay consistent with " +
	"established facts, and match the author's voice when drafting prose."

// StreamEvent 编排器产出的对外事件
type StreamEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
	ModelUsed string `json:"model_used,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SendRequest 发送消息请求
type SendRequest struct {
	Content      string `json:"content" binding:"required"`
	ModelName    string `json:"model_name"`
	ConnectionID string `json:"connection_id"`
}

// RegenerateRequest 重新生成请求
type RegenerateRequest struct {
	ModelName    string `json:"model_name"`
	ConnectionID string `json:"connection_id"`
}

// ChatStream 一次 send/regenerate 的事件流，由消费方拉取
// 必须读到 io.EOF 或显式 Close，否则会话锁不会释放
type ChatStream struct {
	svc       *Service
	conv      *model.Conversation
	upstream  *llm.Stream
	pending   []StreamEvent
	snapshot  *model.ContextSnapshot
	modelName string
	userText  string

	builder      strings.Builder
	inputTokens  int
	outputTokens int

	regenerate bool
	finished   bool
	release    func()
}

// Send 向会话发送一条用户消息并流式返回助手回复
// 所有失败都以 error 事件返回，不外抛
func (s *Service) Send(ctx context.Context, userID, conversationID string, req *SendRequest) *ChatStream {
	conv, err := s.ownedConversation(userID, conversationID)
	if err != nil {
		return failedStream("conversation not found")
	}

	release, ok := s.acquire(conversationID)
	if !ok {
		return failedStream("a generation is already running for this conversation")
	}

	st := &ChatStream{svc: s, conv: conv, release: release, userText: req.Content}

	// (1) 解析连接；没有可用连接时不持久化任何内容
	conn, err := s.connections.Resolve(ctx, conv, req.ConnectionID, userID)
	if err != nil {
		return st.fail(fmt.Sprintf("failed to resolve connection: %v", err))
	}
	if conn == nil {
		return st.fail("no usable model connection is configured")
	}
	provider, ok := llm.Lookup(conn.Provider)
	if !ok {
		return st.fail(fmt.Sprintf("unsupported provider: %s", conn.Provider))
	}

	// (2) 模型名：显式指定 → 会话固定 → 提供商默认
	st.modelName = req.ModelName
	if st.modelName == "" {
		st.modelName = conv.ModelName
	}
	if st.modelName == "" {
		st.modelName = provider.DefaultModel()
	}

	// (3) 构建出站消息列表
	turns, err := s.repo.ListTurns(conversationID)
	if err != nil {
		return st.fail(fmt.Sprintf("failed to load conversation history: %v", err))
	}
	messages, err := s.buildMessages(ctx, conv, turns, req.Content)
	if err != nil {
		return st.fail(fmt.Sprintf("failed to build prompt: %v", err))
	}

	// (4) 上下文快照在流开始前构建并随消息持久化
	st.snapshot = s.buildSnapshot(conv)

	// (5) 持久化用户消息
	userTurn := &model.Turn{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           model.RoleUser,
		Content:        req.Content,
		ContextUsed:    st.snapshot,
	}
	if err := s.repo.CreateTurn(userTurn); err != nil {
		return st.fail(fmt.Sprintf("failed to save message: %v", err))
	}
	st.pending = append(st.pending, StreamEvent{Type: EventUserMessage, MessageID: userTurn.ID})

	// (6) 打开上游流
	apiKey, err := s.connections.APIKey(conn)
	if err != nil {
		return st.fail(fmt.Sprintf("failed to read connection credential: %v", err))
	}
	upstream, err := s.client.OpenStream(ctx, provider, conn.BaseURL, apiKey, st.modelName, messages)
	if err != nil {
		return st.fail(err.Error())
	}

	st.upstream = upstream
	return st
}

// Regenerate 删除最近一条助手回复并基于其前置用户消息重新生成
// 不创建新的用户消息，也不产出 user_message 事件
func (s *Service) Regenerate(ctx context.Context, userID, conversationID string, req *RegenerateRequest) *ChatStream {
	conv, err := s.ownedConversation(userID, conversationID)
	if err != nil {
		return failedStream("conversation not found")
	}

	release, ok := s.acquire(conversationID)
	if !ok {
		return failedStream("a generation is already running for this conversation")
	}

	st := &ChatStream{svc: s, conv: conv, release: release, regenerate: true}

	lastAssistant, err := s.repo.GetLatestAssistantTurn(conversationID)
	if err != nil {
		return st.fail(fmt.Sprintf("failed to load conversation history: %v", err))
	}
	if lastAssistant == nil {
		return st.fail("no assistant message to regenerate")
	}

	turns, err := s.repo.ListTurns(conversationID)
	if err != nil {
		return st.fail(fmt.Sprintf("failed to load conversation history: %v", err))
	}

	// 前置用户消息缺失说明会话数据已损坏，按错误处理而非猜测
	precedingUser := precedingUserTurn(turns, lastAssistant.ID)
	if precedingUser == nil {
		return st.fail("conversation has no user message before the last reply")
	}
	st.userText = precedingUser.Content

	conn, err := s.connections.Resolve(ctx, conv, req.ConnectionID, userID)
	if err != nil {
		return st.fail(fmt.Sprintf("failed to resolve connection: %v", err))
	}
	if conn == nil {
		return st.fail("no usable model connection is configured")
	}
	provider, ok := llm.Lookup(conn.Provider)
	if !ok {
		return st.fail(fmt.Sprintf("unsupported provider: %s", conn.Provider))
	}

	st.modelName = req.ModelName
	if st.modelName == "" {
		st.modelName = conv.ModelName
	}
	if st.modelName == "" {
		st.modelName = provider.DefaultModel()
	}

	// 旧回复删除后，剩余消息以前置用户消息收尾
	if err := s.repo.DeleteTurn(lastAssistant.ID); err != nil {
		return st.fail(fmt.Sprintf("failed to delete previous reply: %v", err))
	}
	remaining := make([]*model.Turn, 0, len(turns)-1)
	for _, t := range turns {
		if t.ID != lastAssistant.ID {
			remaining = append(remaining, t)
		}
	}

	messages, err := s.buildMessages(ctx, conv, remaining, "")
	if err != nil {
		return st.fail(fmt.Sprintf("failed to build prompt: %v", err))
	}

	st.snapshot = s.buildSnapshot(conv)

	apiKey, err := s.connections.APIKey(conn)
	if err != nil {
		return st.fail(fmt.Sprintf("failed to read connection credential: %v", err))
	}
	upstream, err := s.client.OpenStream(ctx, provider, conn.BaseURL, apiKey, st.modelName, messages)
	if err != nil {
		return st.fail(err.Error())
	}

	st.upstream = upstream
	return st
}

// buildMessages 组装出站消息：系统消息、既有历史、可选的新用户文本
func (s *Service) buildMessages(ctx context.Context, conv *model.Conversation, turns []*model.Turn, newUserText string) ([]llm.Message, error) {
	sections, err := s.Sections(ctx, conv)
	if err != nil {
		return nil, err
	}

	system := s.systemPreamble(conv)
	for _, section := range sections {
		system += fmt.Sprintf("\n\n## %s\n%s", section.Name, strings.Join(section.Texts, "\n\n"))
	}

	messages := []llm.Message{{Role: model.RoleSystem, Content: system}}
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	if newUserText != "" {
		messages = append(messages, llm.Message{Role: model.RoleUser, Content: newUserText})
	}
	return messages, nil
}

// systemPreamble 角色设定加稿件元数据，只包含非空字段
func (s *Service) systemPreamble(conv *model.Conversation) string {
	var b strings.Builder
	b.WriteString(personaPreamble)

	novel, err := s.novels.GetNovelByID(conv.NovelID)
	if err != nil {
		return b.String()
	}

	b.WriteString("\n")
	if novel.Title != "" {
		fmt.Fprintf(&b, "\nTitle: %s", novel.Title)
	}
	if novel.Genre != "" {
		fmt.Fprintf(&b, "\nGenre: %s", novel.Genre)
	}
	if novel.PointOfView != "" {
		fmt.Fprintf(&b, "\nPoint of view: %s", novel.PointOfView)
	}
	if novel.Tense != "" {
		fmt.Fprintf(&b, "\nTense: %s", novel.Tense)
	}
	return b.String()
}

// buildSnapshot 记录当前生效的上下文条目，随消息只写一次
func (s *Service) buildSnapshot(conv *model.Conversation) *model.ContextSnapshot {
	snapshot := &model.ContextSnapshot{
		Items:     []model.SnapshotItem{},
		Timestamp: time.Now(),
	}
	if conv.SceneID != nil {
		snapshot.LinkedSceneID = *conv.SceneID
	}

	items, err := s.repo.ListContextItems(conv.ID)
	if err != nil {
		log.Printf("chat: failed to snapshot context for conversation %s: %v", conv.ID, err)
		return snapshot
	}

	for _, item := range items {
		if !item.IsActive {
			continue
		}
		snapshot.Items = append(snapshot.Items, model.SnapshotItem{
			ID:          item.ID,
			Type:        item.ItemType,
			ReferenceID: item.ReferenceID,
			Name:        s.snapshotName(item),
		})
	}
	return snapshot
}

// snapshotName 条目在快照中的展示名
func (s *Service) snapshotName(item *model.ContextItem) string {
	switch item.ItemType {
	case model.ContextItemScene, model.ContextItemSummary:
		if scene, err := s.novels.GetSceneByID(item.ReferenceID); err == nil {
			return scene.Title
		}
	case model.ContextItemCodex:
		if entry, err := s.codex.GetByID(item.ReferenceID); err == nil {
			return entry.Name
		}
	case model.ContextItemOutline:
		return "Outline"
	case model.ContextItemCustom:
		return deriveTitle(item.Content)
	}
	return item.ItemType
}

// precedingUserTurn 找到紧邻 assistantID 之前的用户消息
func precedingUserTurn(turns []*model.Turn, assistantID string) *model.Turn {
	var last *model.Turn
	for _, t := range turns {
		if t.ID == assistantID {
			return last
		}
		if t.Role == model.RoleUser {
			last = t
		}
	}
	return nil
}

// deriveTitle 从文本截取标题，按 rune 截断避免劈开多字节字符
func deriveTitle(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxDerivedTitleLen {
		return text
	}
	return string(runes[:maxDerivedTitleLen])
}

// failedStream 返回只含一个 error 事件的流
func failedStream(msg string) *ChatStream {
	return &ChatStream{
		pending:  []StreamEvent{{Type: EventError, Error: msg}},
		finished: true,
	}
}

// fail 终止流并附加 error 事件；已持久化的用户消息保留
func (st *ChatStream) fail(msg string) *ChatStream {
	st.pending = append(st.pending, StreamEvent{Type: EventError, Error: msg})
	st.finish()
	return st
}

// Recv 返回下一个对外事件，流结束时返回 io.EOF
func (st *ChatStream) Recv() (*StreamEvent, error) {
	if len(st.pending) > 0 {
		ev := st.pending[0]
		st.pending = st.pending[1:]
		return &ev, nil
	}
	if st.finished {
		return nil, io.EOF
	}
	if st.upstream == nil {
		st.finish()
		return nil, io.EOF
	}

	for {
		ev, err := st.upstream.Recv()
		if err == io.EOF {
			return st.complete()
		}
		if err != nil {
			// 上游失败是终态：不持久化助手消息，错误以事件返回
			st.finish()
			return &StreamEvent{Type: EventError, Error: err.Error()}, nil
		}
		if ev.Usage != nil {
			// 多次下发时以最后一次为准
			st.inputTokens = ev.Usage.PromptTokens
			st.outputTokens = ev.Usage.CompletionTokens
			continue
		}
		st.builder.WriteString(ev.Content)
		return &StreamEvent{Type: EventContent, Content: ev.Content}, nil
	}
}

// complete 流正常结束：持久化助手消息并产出 done 事件
// 持久化永远是 completed 前的最后一个状态变更
func (st *ChatStream) complete() (*StreamEvent, error) {
	defer st.finish()

	turn := &model.Turn{
		ID:             uuid.New().String(),
		ConversationID: st.conv.ID,
		Role:           model.RoleAssistant,
		Content:        st.builder.String(),
		ModelUsed:      st.modelName,
		InputTokens:    st.inputTokens,
		OutputTokens:   st.outputTokens,
		ContextUsed:    st.snapshot,
	}
	if err := st.svc.repo.CreateTurn(turn); err != nil {
		return &StreamEvent{Type: EventError, Error: fmt.Sprintf("failed to save reply: %v", err)}, nil
	}

	// 更新会话时间戳，必要时从首条用户消息派生标题
	if st.conv.Title == "" && st.userText != "" {
		st.conv.Title = deriveTitle(st.userText)
	}
	st.conv.UpdatedAt = time.Now()
	if err := st.svc.repo.UpdateConversation(st.conv); err != nil {
		log.Printf("chat: failed to touch conversation %s: %v", st.conv.ID, err)
	}

	// 实时通知是尽力而为，失败不影响已产出的事件序列
	st.svc.notifier.TurnAdded(context.Background(), &notify.TurnEvent{
		ConversationID: st.conv.ID,
		TurnID:         turn.ID,
		Role:           turn.Role,
		ModelUsed:      turn.ModelUsed,
		CreatedAt:      turn.CreatedAt,
	})

	ev := StreamEvent{Type: EventDone, MessageID: turn.ID}
	if st.regenerate {
		ev.ModelUsed = st.modelName
	}
	return &ev, nil
}

// Close 终止流：中断上游请求并释放会话锁
// 未完成的生成不会持久化助手消息
func (st *ChatStream) Close() {
	st.finish()
}

func (st *ChatStream) finish() {
	if st.finished {
		return
	}
	st.finished = true
	if st.upstream != nil {
		st.upstream.Close()
	}
	if st.release != nil {
		st.release()
		st.release = nil
	}
}
