package repository

import (
	"errors"

	"github.com/ZulfikarHD/inkwell/internal/model"
	"gorm.io/gorm"
)

// chatRepository 对话数据访问
type chatRepository struct {
	db *gorm.DB
}

// 确保 chatRepository 实现了接口
var _ ChatRepository = (*chatRepository)(nil)

// NewChatRepository 创建对话仓库
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// CreateConversation 创建会话
func (r *chatRepository) CreateConversation(conv *model.Conversation) error {
	return r.db.Create(conv).Error
}

// GetConversationByID 获取会话
func (r *chatRepository) GetConversationByID(id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations 列出会话
func (r *chatRepository) ListConversations(userID, novelID string, includeArchived bool, offset, limit int) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	query := r.db.Order("updated_at DESC").Offset(offset).Limit(limit)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if novelID != "" {
		query = query.Where("novel_id = ?", novelID)
	}
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	err := query.Find(&convs).Error
	return convs, err
}

// UpdateConversation 更新会话
func (r *chatRepository) UpdateConversation(conv *model.Conversation) error {
	return r.db.Save(conv).Error
}

// DeleteConversation 删除会话及其消息和上下文条目
func (r *chatRepository) DeleteConversation(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Turn{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.ContextItem{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conversation{}, "id = ?", id).Error
	})
}

// CreateTurn 创建消息
func (r *chatRepository) CreateTurn(turn *model.Turn) error {
	return r.db.Create(turn).Error
}

// GetTurnByID 获取单条消息
func (r *chatRepository) GetTurnByID(id string) (*model.Turn, error) {
	var turn model.Turn
	err := r.db.Where("id = ?", id).First(&turn).Error
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

// ListTurns 按创建顺序获取会话消息
func (r *chatRepository) ListTurns(conversationID string) ([]*model.Turn, error) {
	var turns []*model.Turn
	err := r.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&turns).Error
	return turns, err
}

// GetLatestAssistantTurn 获取会话最近一条 assistant 消息
func (r *chatRepository) GetLatestAssistantTurn(conversationID string) (*model.Turn, error) {
	var turn model.Turn
	err := r.db.Where("conversation_id = ? AND role = ?", conversationID, model.RoleAssistant).
		Order("created_at DESC").
		First(&turn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &turn, nil
}

// DeleteTurn 删除消息
func (r *chatRepository) DeleteTurn(id string) error {
	return r.db.Delete(&model.Turn{}, "id = ?", id).Error
}

// CreateContextItem 创建上下文条目
func (r *chatRepository) CreateContextItem(item *model.ContextItem) error {
	return r.db.Create(item).Error
}

// GetContextItemByID 获取上下文条目
func (r *chatRepository) GetContextItemByID(id string) (*model.ContextItem, error) {
	var item model.ContextItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindContextItem 按 (会话, 类型, 引用) 查找条目，未找到返回 nil
func (r *chatRepository) FindContextItem(conversationID, itemType, referenceID string) (*model.ContextItem, error) {
	var item model.ContextItem
	err := r.db.Where("conversation_id = ? AND item_type = ? AND reference_id = ?",
		conversationID, itemType, referenceID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListContextItems 列出会话的全部上下文条目
func (r *chatRepository) ListContextItems(conversationID string) ([]*model.ContextItem, error) {
	var items []*model.ContextItem
	err := r.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// UpdateContextItem 更新上下文条目
func (r *chatRepository) UpdateContextItem(item *model.ContextItem) error {
	return r.db.Save(item).Error
}

// DeleteContextItem 删除上下文条目
func (r *chatRepository) DeleteContextItem(id string) error {
	return r.db.Delete(&model.ContextItem{}, "id = ?", id).Error
}
