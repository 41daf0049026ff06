// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーアカウントの権限区分を表す。
type Role string

const (
	// RoleAdmin は従業員レコードの作成・更新・削除を許可された管理者を示す。
	RoleAdmin Role = "admin"
	// RoleViewer は閲覧のみを許可された一般ユーザーを示す。
	RoleViewer Role = "viewer"
)

// Valid はRoleが定義済みの値であるかを返す。
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// UserAccount はログイン可能なアカウントを表す。
// シードデータとして投入され、実行時には変更されない。
// PasswordHashはargon2idのPHC形式文字列であり、平文パスワードは保持しない。
type UserAccount struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
