package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"EmergencyAssist/pkg/logger"

	"go.uber.org/zap"
)

const filePrefix = "emergency_backup_"

// Options 备份参数
type Options struct {
	Driver string
	DSN    string
	Dir    string
	// Keep 保留最近的备份数量，0 表示不清理
	Keep int
}

// ErrUnsupported 不支持的驱动或内存数据库
type ErrUnsupported struct{ Reason string }

func (e *ErrUnsupported) Error() string { return "backup unsupported: " + e.Reason }

// Execute 执行一次备份，返回备份文件路径
func Execute(opts Options) (string, error) {
	if opts.Driver != "sqlite" {
		return "", &ErrUnsupported{Reason: "driver " + opts.Driver}
	}
	src, err := SQLitePath(opts.DSN)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(opts.Dir, fmt.Sprintf("%s%s.db", filePrefix, time.Now().Format("20060102_150405.000")))
	if err := BackupSQLiteDatabase(src, dst); err != nil {
		return "", err
	}
	if opts.Keep > 0 {
		if err := prune(opts.Dir, opts.Keep); err != nil {
			logger.Warn("prune backups failed", zap.Error(err))
		}
	}
	return dst, nil
}

// SQLitePath 从 DSN 中取出数据库文件路径，内存数据库返回错误
func SQLitePath(dsn string) (string, error) {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" || p == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return "", &ErrUnsupported{Reason: "in-memory sqlite"}
	}
	return p, nil
}

// BackupSQLiteDatabase 拷贝 SQLite 数据库文件
func BackupSQLiteDatabase(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error opening source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}
	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return fmt.Errorf("error copying data: %w", err)
	}
	if err := destFile.Close(); err != nil {
		return err
	}

	logger.Info("sqlite backup completed", zap.String("dst", dst))
	return nil
}

func prune(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return nil
	}
	// 文件名中的时间戳保证字典序即时间序
	sort.Strings(names)
	for _, n := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, n)); err != nil {
			return err
		}
	}
	return nil
}
