package model

// 権限の値
type Permission int

const (
	PermissionUser  Permission = 0
	PermissionAdmin Permission = 1
)

const (
	RoleNameUser          = "User"
	RoleNameAdministrator = "Administrator"
)

// 初期ロールとその権限
var SeedRoles = []struct {
	Name        string
	Permissions []Permission
}{
	{Name: RoleNameUser, Permissions: []Permission{PermissionUser}},
	{Name: RoleNameAdministrator, Permissions: []Permission{PermissionAdmin, PermissionUser}},
}

// 新規ユーザーに割り当てるロール名
const DefaultRoleName = RoleNameUser

// 権限をまとめたロール。Defaultがtrueなのは1つだけ
type Role struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	Default     bool       `gorm:"not null;default:false;index" json:"default"`
	Permissions Permission `gorm:"not null;default:0" json:"permissions"`
}

// HasPermission は保存値と完全一致するときだけtrueを返す。
// ビット包含ではないので、複数の権限を足したロールは単体の権限チェックに通らない。
func (r *Role) HasPermission(perm Permission) bool {
	return r.Permissions == perm
}

func (r *Role) AddPermission(perm Permission) {
	if !r.HasPermission(perm) {
		r.Permissions += perm
	}
}

func (r *Role) RemovePermission(perm Permission) {
	if r.HasPermission(perm) {
		r.Permissions -= perm
	}
}

func (r *Role) ResetPermissions() {
	r.Permissions = 0
}
