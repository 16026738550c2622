package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/service/budget"
)

// AddContextItemRequest 添加上下文条目请求
type AddContextItemRequest struct {
	ItemType    string `json:"item_type" binding:"required"`
	ReferenceID string `json:"reference_id"`
	Content     string `json:"content"`
}

// AddContextItem 向会话添加上下文条目
// 同一 (类型, 引用) 已存在时不重复创建，只把 is_active 置回 true
func (s *Service) AddContextItem(ctx context.Context, userID, conversationID string, req *AddContextItemRequest) (*model.ContextItem, error) {
	conv, err := s.ownedConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}

	switch req.ItemType {
	case model.ContextItemScene, model.ContextItemCodex, model.ContextItemSummary:
		if req.ReferenceID == "" {
			return nil, fmt.Errorf("item type %s requires a reference_id", req.ItemType)
		}
	case model.ContextItemOutline:
		// 大纲条目引用整部小说，无需单独引用
	case model.ContextItemCustom:
		if req.Content == "" {
			return nil, fmt.Errorf("custom items require content")
		}
	default:
		return nil, fmt.Errorf("unknown item type: %s", req.ItemType)
	}

	referenceID := req.ReferenceID
	// 大纲条目整体引用所属小说，同一会话最多保留一条
	if req.ItemType == model.ContextItemOutline {
		referenceID = conv.NovelID
	}

	if referenceID != "" {
		existing, err := s.repo.FindContextItem(conversationID, req.ItemType, referenceID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up context item: %w", err)
		}
		if existing != nil {
			if !existing.IsActive {
				existing.IsActive = true
				if err := s.repo.UpdateContextItem(existing); err != nil {
					return nil, fmt.Errorf("failed to reactivate context item: %w", err)
				}
			}
			return existing, nil
		}
	}

	item := &model.ContextItem{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		ItemType:       req.ItemType,
		ReferenceID:    referenceID,
		Content:        req.Content,
		IsActive:       true,
	}
	// custom 条目没有外部引用，用自身 ID 占住唯一键
	if item.ReferenceID == "" {
		item.ReferenceID = item.ID
	}

	if err := s.repo.CreateContextItem(item); err != nil {
		return nil, fmt.Errorf("failed to create context item: %w", err)
	}
	return item, nil
}

// ToggleContextItem 翻转条目的激活状态
func (s *Service) ToggleContextItem(ctx context.Context, userID, conversationID, itemID string) (*model.ContextItem, error) {
	if _, err := s.ownedConversation(userID, conversationID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetContextItemByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("context item not found: %w", err)
	}
	if item.ConversationID != conversationID {
		return nil, fmt.Errorf("context item not found")
	}

	item.IsActive = !item.IsActive
	if err := s.repo.UpdateContextItem(item); err != nil {
		return nil, fmt.Errorf("failed to update context item: %w", err)
	}
	return item, nil
}

// RemoveContextItem 移除条目
func (s *Service) RemoveContextItem(ctx context.Context, userID, conversationID, itemID string) error {
	if _, err := s.ownedConversation(userID, conversationID); err != nil {
		return err
	}
	item, err := s.repo.GetContextItemByID(itemID)
	if err != nil {
		return fmt.Errorf("context item not found: %w", err)
	}
	if item.ConversationID != conversationID {
		return fmt.Errorf("context item not found")
	}
	if err := s.repo.DeleteContextItem(itemID); err != nil {
		return fmt.Errorf("failed to delete context item: %w", err)
	}
	return nil
}

// ListContextItems 列出会话的全部上下文条目
func (s *Service) ListContextItems(ctx context.Context, userID, conversationID string) ([]*model.ContextItem, error) {
	if _, err := s.ownedConversation(userID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListContextItems(conversationID)
}

// Section 提示词中的一个命名分组
type Section struct {
	Name  string
	Texts []string
}

// 分组在提示词中的固定顺序
var sectionOrder = []string{
	model.ContextItemScene,
	model.ContextItemCodex,
	model.ContextItemOutline,
	model.ContextItemSummary,
	model.ContextItemCustom,
}

var sectionNames = map[string]string{
	model.ContextItemScene:   "Scenes",
	model.ContextItemCodex:   "Codex",
	model.ContextItemOutline: "Outline",
	model.ContextItemSummary: "Summaries",
	model.ContextItemCustom:  "Notes",
}

// Sections 渲染会话的活跃上下文条目并按固定顺序分组
// 引用目标已不存在的条目跳过；AI 不可见的设定条目静默排除
func (s *Service) Sections(ctx context.Context, conv *model.Conversation) ([]Section, error) {
	items, err := s.repo.ListContextItems(conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list context items: %w", err)
	}

	grouped := make(map[string][]string)
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		text, ok := s.renderItem(conv, item)
		if !ok {
			continue
		}
		grouped[item.ItemType] = append(grouped[item.ItemType], text)
	}

	var sections []Section
	for _, itemType := range sectionOrder {
		if texts := grouped[itemType]; len(texts) > 0 {
			sections = append(sections, Section{Name: sectionNames[itemType], Texts: texts})
		}
	}
	return sections, nil
}

// renderItem 渲染单个条目的文本
// 引用类型读取目标实体的当前内容，而非消息产生时的快照
func (s *Service) renderItem(conv *model.Conversation, item *model.ContextItem) (string, bool) {
	switch item.ItemType {
	case model.ContextItemCustom:
		return item.Content, true

	case model.ContextItemScene:
		scene, err := s.novels.GetSceneByID(item.ReferenceID)
		if err != nil {
			return "", false
		}
		var b strings.Builder
		fmt.Fprintf(&b, "### %s\n", scene.Title)
		if scene.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", scene.Summary)
		}
		b.WriteString(scene.Content)
		return b.String(), true

	case model.ContextItemCodex:
		entry, err := s.codex.GetByID(item.ReferenceID)
		if err != nil {
			return "", false
		}
		if entry.AIVisibility == model.VisibilityHidden {
			return "", false
		}
		var b strings.Builder
		fmt.Fprintf(&b, "### %s (%s)\n", entry.Name, entry.EntryType)
		if entry.Description != "" {
			b.WriteString(entry.Description)
			b.WriteString("\n")
		}
		// 按键名排序，保证提示词和预算在相同输入下稳定
		keys := make([]string, 0, len(entry.Details))
		for k := range entry.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, entry.Details[k])
		}
		return strings.TrimRight(b.String(), "\n"), true

	case model.ContextItemSummary:
		scene, err := s.novels.GetSceneByID(item.ReferenceID)
		if err != nil || scene.Summary == "" {
			return "", false
		}
		return fmt.Sprintf("%s: %s", scene.Title, scene.Summary), true

	case model.ContextItemOutline:
		scenes, err := s.novels.ListScenes(conv.NovelID)
		if err != nil || len(scenes) == 0 {
			return "", false
		}
		var b strings.Builder
		for i, scene := range scenes {
			fmt.Fprintf(&b, "%d. %s", i+1, scene.Title)
			if scene.Summary != "" {
				fmt.Fprintf(&b, " — %s", scene.Summary)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n"), true
	}
	return "", false
}

// Budget 检查会话当前上下文的 token 预算
// 每次调用都重新计算，不缓存
func (s *Service) Budget(ctx context.Context, userID, conversationID, modelName string) (*budget.LimitCheck, error) {
	conv, err := s.ownedConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = conv.ModelName
	}

	sections, err := s.Sections(ctx, conv)
	if err != nil {
		return nil, err
	}

	tokens := budget.EstimateTokens(s.systemPreamble(conv))
	for _, section := range sections {
		for _, text := range section.Texts {
			tokens += budget.EstimateTokens(text)
		}
	}

	check := budget.Check(tokens, modelName)
	return &check, nil
}
