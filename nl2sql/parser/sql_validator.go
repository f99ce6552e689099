package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"
)

var (
	ErrNotReadOnly    = errors.New("SQL语句不是只读操作")
	ErrInvalidSQL     = errors.New("无效的SQL语句")
	ErrUnsafeKeywords = errors.New("SQL包含危险关键字")
	ErrNoFromClause   = errors.New("缺少FROM子句")
	ErrEmptySQL       = errors.New("SQL语句为空")
)

var (
	// 字符串字面量与注释，关键字检查前剔除
	sqlLiteralRe = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"\\]|\\.)*"`)
	sqlCommentRe = regexp.MustCompile(`(?s)--[^\n]*|/\*.*?\*/`)
	firstWordRe  = regexp.MustCompile(`^\s*\(*\s*([A-Za-z]+)`)
	fromRe       = regexp.MustCompile(`(?i)\bFROM\b`)
)

// SQLValidator SQL校验器
type SQLValidator struct {
	bannedKeywords *regexp.Regexp
}

// NewSQLValidator 创建SQL校验器
func NewSQLValidator() *SQLValidator {
	banned := []string{"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER", "TRUNCATE", "GRANT", "REVOKE", "EXEC", "EXECUTE", "CALL", "MERGE", "REPLACE INTO", "UPSERT", "LOAD_FILE", "OUTFILE", "DUMPFILE"}
	return &SQLValidator{
		bannedKeywords: regexp.MustCompile(`(?i)\b(` + strings.Join(banned, "|") + `)\b`),
	}
}

// NormalizeStatement 去掉首尾空白，只保留第一个分号之前的语句并以单个分号结尾
func NormalizeStatement(sql string) string {
	sql = strings.TrimSpace(sql)
	if idx := strings.Index(sql, ";"); idx >= 0 {
		sql = sql[:idx]
	}
	return strings.TrimSpace(sql) + ";"
}

// ValidateSelect 校验SQL是否为只读查询
// 先用 sqlparser 解析；引擎专有语法解析失败时退回关键字检查
func (v *SQLValidator) ValidateSelect(sql string) error {
	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	if body == "" {
		return ErrEmptySQL
	}

	// 1. 检查危险关键字（忽略字符串字面量和注释中的内容）
	stripped := stripLiterals(body)
	if m := v.bannedKeywords.FindString(stripped); m != "" {
		return fmt.Errorf("%w: %s", ErrUnsafeKeywords, strings.ToUpper(m))
	}
	if strings.Contains(stripped, ";") {
		return fmt.Errorf("%w: 只允许单条语句", ErrInvalidSQL)
	}

	// 2. 使用sqlparser解析
	stmt, err := sqlparser.Parse(body)
	if err != nil {
		return v.validateByKeyword(stripped, err)
	}

	// 3. 检查是否是SELECT语句或UNION查询
	switch s := stmt.(type) {
	case *sqlparser.Select:
		return v.checkSelectStatement(s)
	case *sqlparser.Union:
		return v.checkUnion(s)
	case *sqlparser.ParenSelect:
		return v.checkSelectStatement(s.Select)
	default:
		return fmt.Errorf("%w: 只允许SELECT查询", ErrNotReadOnly)
	}
}

// IsSelect ValidateSelect 的布尔形式
func (v *SQLValidator) IsSelect(sql string) bool {
	return v.ValidateSelect(sql) == nil
}

// validateByKeyword 解析失败时的退路：语句必须以 SELECT 或 WITH 开头且包含 FROM
func (v *SQLValidator) validateByKeyword(stripped string, parseErr error) error {
	m := firstWordRe.FindStringSubmatch(stripped)
	if m == nil {
		return fmt.Errorf("%w: %v", ErrInvalidSQL, parseErr)
	}
	switch strings.ToUpper(m[1]) {
	case "SELECT", "WITH":
	default:
		return fmt.Errorf("%w: 只允许SELECT查询", ErrNotReadOnly)
	}
	if !fromRe.MatchString(stripped) {
		return ErrNoFromClause
	}
	return nil
}

// stripLiterals 去掉注释和字符串字面量
func stripLiterals(sql string) string {
	sql = sqlCommentRe.ReplaceAllString(sql, " ")
	return sqlLiteralRe.ReplaceAllString(sql, "''")
}

// checkSubqueries 递归检查子查询是否只读
func (v *SQLValidator) checkSubqueries(stmt *sqlparser.Select) error {
	// 检查FROM子句中的子查询
	for _, from := range stmt.From {
		if err := v.checkTableExpr(from); err != nil {
			return err
		}
	}

	// 检查WHERE子句中的子查询
	if stmt.Where != nil {
		if err := v.checkWhereSubqueries(stmt.Where.Expr); err != nil {
			return err
		}
	}

	return nil
}

// checkTableExpr 检查FROM中的表达式，包括JOIN两侧
func (v *SQLValidator) checkTableExpr(expr sqlparser.TableExpr) error {
	switch t := expr.(type) {
	case *sqlparser.AliasedTableExpr:
		if subquery, ok := t.Expr.(*sqlparser.Subquery); ok {
			return v.checkSelectStatement(subquery.Select)
		}
	case *sqlparser.JoinTableExpr:
		if err := v.checkTableExpr(t.LeftExpr); err != nil {
			return err
		}
		return v.checkTableExpr(t.RightExpr)
	case *sqlparser.ParenTableExpr:
		for _, e := range t.Exprs {
			if err := v.checkTableExpr(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkUnion 检查UNION查询
func (v *SQLValidator) checkUnion(union *sqlparser.Union) error {
	if err := v.checkSelectStatement(union.Left); err != nil {
		return err
	}
	return v.checkSelectStatement(union.Right)
}

// checkSelectStatement 检查SelectStatement（可能是Select或Union）
func (v *SQLValidator) checkSelectStatement(stmt sqlparser.SelectStatement) error {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		if len(s.From) == 0 {
			return ErrNoFromClause
		}
		return v.checkSubqueries(s)
	case *sqlparser.Union:
		return v.checkUnion(s)
	case *sqlparser.ParenSelect:
		return v.checkSelectStatement(s.Select)
	default:
		return fmt.Errorf("%w: 只允许SELECT查询", ErrNotReadOnly)
	}
}

// checkWhereSubqueries 检查WHERE子句中的子查询
func (v *SQLValidator) checkWhereSubqueries(expr sqlparser.Expr) error {
	switch e := expr.(type) {
	case *sqlparser.Subquery:
		return v.checkSelectStatement(e.Select)
	case *sqlparser.ComparisonExpr:
		if err := v.checkWhereSubqueries(e.Left); err != nil {
			return err
		}
		return v.checkWhereSubqueries(e.Right)
	case *sqlparser.AndExpr:
		if err := v.checkWhereSubqueries(e.Left); err != nil {
			return err
		}
		return v.checkWhereSubqueries(e.Right)
	case *sqlparser.OrExpr:
		if err := v.checkWhereSubqueries(e.Left); err != nil {
			return err
		}
		return v.checkWhereSubqueries(e.Right)
	case *sqlparser.ParenExpr:
		return v.checkWhereSubqueries(e.Expr)
	case *sqlparser.ExistsExpr:
		return v.checkSelectStatement(e.Subquery.Select)
	}
	return nil
}

// ExtractTables 提取SQL中FROM与JOIN引用的表名，解析失败时返回错误
func (v *SQLValidator) ExtractTables(sql string) ([]string, error) {
	stmt, err := sqlparser.Parse(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSQL, err)
	}

	tables := make([]string, 0)
	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if aliased, ok := node.(*sqlparser.AliasedTableExpr); ok {
			if tableName, ok := aliased.Expr.(sqlparser.TableName); ok && !tableName.IsEmpty() {
				tables = append(tables, tableName.Name.String())
			}
		}
		return true, nil
	}, stmt)

	return tables, nil
}
