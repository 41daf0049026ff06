package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/staffman/internal/model"
)

func memTestEmployee(id, name, email string) *model.Employee {
	return &model.Employee{
		ID:            id,
		Name:          name,
		Email:         email,
		Position:      "Engineer",
		Department:    "Platform",
		DateOfJoining: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

// 返却されたレコードへの変更がストア内部に波及しないこと
func TestMemoryEmployeeRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryEmployeeRepo()
	ctx := context.Background()

	if err := repo.Insert(ctx, memTestEmployee("emp-1", "Taro Yamada", "taro@example.com")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "emp-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	found.Name = "Mutated"

	again, err := repo.FindByID(ctx, "emp-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if again.Name != "Taro Yamada" {
		t.Errorf("Name = %q, want store unaffected by caller mutation", again.Name)
	}
}

// 大文字小文字のみ異なる名前はバイト順で安定に並ぶこと
func TestMemoryEmployeeRepo_List_CaseInsensitiveOrder(t *testing.T) {
	repo := NewMemoryEmployeeRepo()
	ctx := context.Background()

	for _, e := range []struct{ id, name, email string }{
		{"emp-1", "alice", "alice1@example.com"},
		{"emp-2", "Alice", "alice2@example.com"},
		{"emp-3", "Bob", "bob@example.com"},
	} {
		if err := repo.Insert(ctx, memTestEmployee(e.id, e.name, e.email)); err != nil {
			t.Fatalf("Insert(%s) error = %v", e.name, err)
		}
	}

	employees, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var names []string
	for _, e := range employees {
		names = append(names, e.Name)
	}
	want := []string{"Alice", "alice", "Bob"}
	if len(names) != len(want) {
		t.Fatalf("len(employees) = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestMemoryEmployeeRepo_FindByID_NotFound(t *testing.T) {
	repo := NewMemoryEmployeeRepo()

	found, err := repo.FindByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found != nil {
		t.Errorf("FindByID() = %+v, want nil", found)
	}
}

func TestMemoryEmployeeRepo_Insert_DuplicateEmail(t *testing.T) {
	repo := NewMemoryEmployeeRepo()
	ctx := context.Background()

	if err := repo.Insert(ctx, memTestEmployee("emp-1", "Taro Yamada", "taro@example.com")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	err := repo.Insert(ctx, memTestEmployee("emp-2", "Another Taro", "taro@example.com"))
	if err != ErrDuplicateEmail {
		t.Errorf("Insert() error = %v, want ErrDuplicateEmail", err)
	}
}

// email衝突が検出された更新はレコードを一切変更しないこと
func TestMemoryEmployeeRepo_Update_ConflictLeavesRecordUnchanged(t *testing.T) {
	repo := NewMemoryEmployeeRepo()
	ctx := context.Background()

	if err := repo.Insert(ctx, memTestEmployee("emp-1", "Taro Yamada", "taro@example.com")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.Insert(ctx, memTestEmployee("emp-2", "Hanako Sato", "hanako@example.com")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	taken := "taro@example.com"
	newName := "Renamed"
	_, err := repo.Update(ctx, "emp-2", &model.EmployeePatch{Name: &newName, Email: &taken})
	if err != ErrDuplicateEmail {
		t.Fatalf("Update() error = %v, want ErrDuplicateEmail", err)
	}

	found, err := repo.FindByID(ctx, "emp-2")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Name != "Hanako Sato" || found.Email != "hanako@example.com" {
		t.Errorf("record changed by failed update: %+v", found)
	}
}
