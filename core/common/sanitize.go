package common

import (
	"regexp"
	"strings"
)

var (
	tenantIDRe       = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]{0,127}$`)
	collectionNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
)

// SanitizeMilvusString 转义 Milvus 表达式中的特殊字符
// 防止通过特殊字符进行表达式注入
func SanitizeMilvusString(s string) string {
	// 转义反斜杠（必须先转义）
	s = strings.ReplaceAll(s, `\`, `\\`)
	// 转义双引号
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// SanitizeSQLLiteral 转义 SQL 单引号字符串字面量
func SanitizeSQLLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// ValidateTenantID 验证租户ID，租户ID会进入检索过滤条件、提示词以及对象存储路径
// 只允许字母、数字、下划线、点和连字符，最长128个字符
func ValidateTenantID(tenantID string) bool {
	return tenantIDRe.MatchString(tenantID)
}

// ValidateCollectionName 验证集合名称（只允许字母、数字、下划线）
// Milvus 集合名称规范: 1-255 字符，字母开头，只能包含字母、数字、下划线
func ValidateCollectionName(name string) bool {
	if len(name) == 0 || len(name) > 255 {
		return false
	}
	return collectionNameRe.MatchString(name)
}
