package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogf/gf/v2/frame/g"
)

// ValidateConfiguration validates all required configuration items
func ValidateConfiguration(ctx context.Context) error {
	var missingConfigs []string
	var warnings []string

	required := func(key string) {
		if g.Cfg().MustGet(ctx, key, "").String() == "" {
			missingConfigs = append(missingConfigs, key)
		}
	}
	optional := func(key, msg string) {
		if g.Cfg().MustGet(ctx, key, "").String() == "" {
			warnings = append(warnings, msg)
		}
	}

	// 验证 Milvus 配置
	required("milvus.address")

	// 验证 Chat 配置
	required("chat.apiKey")
	required("chat.baseURL")
	required("chat.model")

	// 验证 Embedding 配置，未配置 key/baseURL 时沿用 chat 的
	required("embedding.model")
	optional("embedding.apiKey", "embedding.apiKey is not set, falling back to chat.apiKey")
	optional("embedding.baseURL", "embedding.baseURL is not set, falling back to chat.baseURL")

	// 验证 OLAP 查询引擎配置
	required("olap.driver")
	required("olap.dsn")

	// 验证对话存储配置
	dbType := g.Cfg().MustGet(ctx, "database.default.type", "").String()
	if dbType == "" {
		missingConfigs = append(missingConfigs, "database.default.type")
	} else if dbType != "sqlite" {
		required("database.default.host")
		required("database.default.port")
		required("database.default.user")
		required("database.default.name")
	} else {
		required("database.default.name")
	}

	// 验证向量集合配置
	optional("collections.tables", "collections.tables is not set, using default")
	optional("collections.columns", "collections.columns is not set, using default")
	optional("collections.examples", "collections.examples is not set, using default")

	// 输出警告信息
	if len(warnings) > 0 {
		g.Log().Warningf(ctx, "Configuration warnings:\n- %s", strings.Join(warnings, "\n- "))
	}

	// 检查是否有缺失的必需配置
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configuration items:\n- %s\n\nPlease check your config.yaml file and ensure all required settings are properly configured", strings.Join(missingConfigs, "\n- "))
	}

	g.Log().Info(ctx, "✓ All required configuration items are present")

	return nil
}
