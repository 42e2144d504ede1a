// Package mysqltest 为仓储与用例测试提供基于SQLite的*gorm.DB
//
// 表结构与生产一致(同一组gorm模型AutoMigrate),不需要启动MySQL。
// SQLite不支持SELECT ... FOR UPDATE,gorm会忽略Locking子句;
// 连接数限制为1,事务天然串行。
package mysqltest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/mysql"
)

// NewDB 每个测试一个临时数据库文件,测试结束自动清理
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "bookstore.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开SQLite失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取SQL DB失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate失败: %v", err)
	}
	return db
}
