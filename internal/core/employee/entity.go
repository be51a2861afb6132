package employee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Department は社員の所属部署です。
type Department string

const (
	DepartmentHR         Department = "HR"
	DepartmentIT         Department = "IT"
	DepartmentFinance    Department = "Finance"
	DepartmentOperations Department = "Operations"
)

// Departments は選択可能な部署の一覧です。
var Departments = []Department{DepartmentHR, DepartmentIT, DepartmentFinance, DepartmentOperations}

// IsValid は部署が列挙値に含まれるかを返します。大文字小文字は区別します。
func (d Department) IsValid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// DepartmentNames は Departments を区切り文字 sep で連結します。
func DepartmentNames(sep string) string {
	names := make([]string, len(Departments))
	for i, d := range Departments {
		names[i] = string(d)
	}
	return strings.Join(names, sep)
}

// ID はサーバーが採番する社員 ID です。数値・文字列どちらの JSON 表現も受け付けます。
type ID string

// UnmarshalJSON は数値 ID を十進文字列に正規化して読み込みます。
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("employee: id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("employee: id: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Employee は社員レコードです。サーバー応答がそのまま正となります。
type Employee struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Department Department `json:"department"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CreateInput は社員作成時に送信する内容です。
type CreateInput struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Department Department `json:"department"`
}

// UpdateInput は社員更新時に送信する内容です。nil のフィールドは送信しません。
type UpdateInput struct {
	Name       *string     `json:"name,omitempty"`
	Email      *string     `json:"email,omitempty"`
	Department *Department `json:"department,omitempty"`
}

// DeleteResult は削除応答です。Message はサーバーが返した場合のみ設定されます。
type DeleteResult struct {
	Message string `json:"message"`
}
