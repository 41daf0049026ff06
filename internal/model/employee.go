package model

import "time"

// Employee は従業員レコードを表す。
// Emailは全レコードを通じて一意であることが不変条件。
type Employee struct {
	ID            string
	Name          string
	Email         string
	Position      string
	Department    string
	DateOfJoining time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EmployeeInput は従業員レコードの新規作成入力。IDはストアが採番する。
type EmployeeInput struct {
	Name          string
	Email         string
	Position      string
	Department    string
	DateOfJoining time.Time
}

// EmployeePatch は従業員レコードの部分更新入力。
// nilのフィールドは変更せず、既存の値を維持する。
type EmployeePatch struct {
	Name          *string
	Email         *string
	Position      *string
	Department    *string
	DateOfJoining *time.Time
}
