package dao

import (
	"fmt"
	"time"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModel "github.com/Malowking/bigo/internal/model/gorm"
)

// DBConfig 数据库配置
type DBConfig struct {
	Type    string `json:"type"`    // 数据库类型: mysql、pgsql 或 sqlite
	Host    string `json:"host"`    // 主机地址
	Port    string `json:"port"`    // 端口
	User    string `json:"user"`    // 用户名
	Pass    string `json:"pass"`    // 密码
	Name    string `json:"name"`    // 数据库名，sqlite 时为文件路径
	Charset string `json:"charset"` // 字符集 (主要用于 MySQL)
}

// getDBConfig 从配置文件中获取数据库配置
// sqlite 没有对应的 gf 驱动，直接读取配置项
func getDBConfig() *DBConfig {
	ctx := gctx.New()
	dbType := g.Cfg().MustGet(ctx, "database.default.type", "").String()
	if dbType == "sqlite" {
		return &DBConfig{
			Type: dbType,
			Name: g.Cfg().MustGet(ctx, "database.default.name", "bigo.db").String(),
		}
	}

	cfg := g.DB().GetConfig()
	return &DBConfig{
		Type:    cfg.Type,
		Host:    cfg.Host,
		Port:    cfg.Port,
		User:    cfg.User,
		Pass:    cfg.Pass,
		Name:    cfg.Name,
		Charset: cfg.Charset,
	}
}

// buildDSN 构建数据库连接字符串
func buildDSN(config *DBConfig) (string, error) {
	switch config.Type {
	case "mysql":
		charset := config.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
			config.User, config.Pass, config.Host, config.Port, config.Name, charset), nil
	case "pgsql", "postgresql", "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			config.Host, config.User, config.Pass, config.Name, config.Port), nil
	case "sqlite":
		if config.Name == "" {
			return "", fmt.Errorf("sqlite database file name is empty")
		}
		return config.Name, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// openDialector 根据数据库类型选择对应的驱动
func openDialector(config *DBConfig, dsn string) (gorm.Dialector, error) {
	switch config.Type {
	case "mysql":
		return mysql.Open(dsn), nil
	case "pgsql", "postgresql", "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// initDatabase 根据配置初始化数据库连接
func initDatabase() (*gorm.DB, error) {
	config := getDBConfig()

	// 构建 DSN
	dsn, err := buildDSN(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build DSN: %v", err)
	}

	dialector, err := openDialector(config, dsn)
	if err != nil {
		return nil, err
	}

	return Open(dialector, logger.Info)
}

// Open 打开连接、设置连接池并迁移表结构
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	// GORM 配置
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}

	gdb, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %v", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移数据库表结构
	if err = gormModel.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("failed to migrate database tables: %v", err)
	}

	return gdb, nil
}
