package repository

import "errors"

// 見つからないを統一（gorm.ErrRecordNotFoundはinfraで変換する）
var ErrNotFound = errors.New("not found")

// 一意制約違反（email重複など）
var ErrConflict = errors.New("conflict")
