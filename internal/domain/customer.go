package domain

import "time"

// Customer 客户账号与远程平台凭据的映射（对应 customers 表）
// Token 为空表示尚未授权，所有远程操作必须先失败于凭据检查
type Customer struct {
	ID         string    `db:"id"` // UUID, PRIMARY KEY
	Username   string    `db:"username"`
	ResourceID int64     `db:"resource_id"` // 远程平台 resource 标识，0=未解析
	Token      string    `db:"token"`       // 远程 API 访问令牌
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// HasCredential 是否持有可用的远程凭据
func (c *Customer) HasCredential() bool {
	return c.Token != ""
}
