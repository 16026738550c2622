// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import "github.com/ZulfikarHD/inkwell/internal/model"

// ========== ChatRepository 接口 ==========

// ChatRepository 对话数据访问接口
// 接口定义使 Service 层可以轻松 mock 进行单元测试
type ChatRepository interface {
	// 会话操作
	CreateConversation(conv *model.Conversation) error
	GetConversationByID(id string) (*model.Conversation, error)
	ListConversations(userID, novelID string, includeArchived bool, offset, limit int) ([]*model.Conversation, error)
	UpdateConversation(conv *model.Conversation) error
	DeleteConversation(id string) error

	// 消息操作
	CreateTurn(turn *model.Turn) error
	GetTurnByID(id string) (*model.Turn, error)
	ListTurns(conversationID string) ([]*model.Turn, error)
	GetLatestAssistantTurn(conversationID string) (*model.Turn, error)
	DeleteTurn(id string) error

	// 上下文条目操作
	CreateContextItem(item *model.ContextItem) error
	GetContextItemByID(id string) (*model.ContextItem, error)
	FindContextItem(conversationID, itemType, referenceID string) (*model.ContextItem, error)
	ListContextItems(conversationID string) ([]*model.ContextItem, error)
	UpdateContextItem(item *model.ContextItem) error
	DeleteContextItem(id string) error
}

// ========== ConnectionRepository 接口 ==========

// ConnectionRepository 提供商连接数据访问接口
type ConnectionRepository interface {
	Create(conn *model.Connection) error
	GetByID(id string) (*model.Connection, error)
	ListByUser(userID string) ([]*model.Connection, error)
	ListActiveByUser(userID string) ([]*model.Connection, error)
	GetDefaultByUser(userID string) (*model.Connection, error)
	Update(conn *model.Connection) error
	Delete(id string) error
	// SetDefault 设置默认连接，同一事务内先清除该用户原有默认
	SetDefault(userID, connectionID string) error
}

// ========== NovelRepository 接口 ==========

// NovelRepository 小说数据访问接口
type NovelRepository interface {
	CreateNovel(novel *model.Novel) error
	GetNovelByID(id string) (*model.Novel, error)
	ListNovels(userID string, offset, limit int) ([]*model.Novel, error)
	UpdateNovel(novel *model.Novel) error
	DeleteNovel(id string) error

	CreateScene(scene *model.Scene) error
	GetSceneByID(id string) (*model.Scene, error)
	ListScenes(novelID string) ([]*model.Scene, error)
	UpdateScene(scene *model.Scene) error
	DeleteScene(id string) error

	CreateLabel(label *model.Label) error
	ListLabels(novelID string) ([]*model.Label, error)
	DeleteLabel(id string) error
	AttachLabel(sceneID, labelID string) error
	DetachLabel(sceneID, labelID string) error
}

// ========== CodexRepository 接口 ==========

// CodexRepository 设定集数据访问接口
type CodexRepository interface {
	Create(entry *model.CodexEntry) error
	GetByID(id string) (*model.CodexEntry, error)
	ListByNovel(novelID string, entryType string) ([]*model.CodexEntry, error)
	Update(entry *model.CodexEntry) error
	Delete(id string) error
}

// ========== PromptRepository 接口 ==========

// PromptRepository 提示词模板数据访问接口
type PromptRepository interface {
	Create(tpl *model.PromptTemplate) error
	GetByID(id string) (*model.PromptTemplate, error)
	ListByUser(userID string, offset, limit int) ([]*model.PromptTemplate, error)
	ListShared(offset, limit int) ([]*model.PromptTemplate, error)
	Update(tpl *model.PromptTemplate) error
	Delete(id string) error
}

// ========== AuthRepository 接口 ==========

// AuthRepository 认证数据访问接口
type AuthRepository interface {
	CreateUser(user *model.User) error
	GetUserByID(id string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	UpdateUser(user *model.User) error

	CreateToken(token *model.AuthToken) error
	GetToken(token string) (*model.AuthToken, error)
	RevokeToken(token string) error
}
