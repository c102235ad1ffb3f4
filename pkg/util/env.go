package util

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var (
	envMu   sync.RWMutex
	envFile = map[string]string{}
)

// LoadEnv 按环境加载 .env.<env> 与 .env，进程环境变量优先级最高
func LoadEnv(env string) error {
	files := []string{".env." + env, ".env"}
	loaded := map[string]string{}
	var missing int
	for i := len(files) - 1; i >= 0; i-- {
		v := viper.New()
		v.SetConfigFile(files[i])
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) || isPathError(err) {
				missing++
				continue
			}
			return err
		}
		// 后读取的（更具体的）文件覆盖前面的
		for _, key := range v.AllKeys() {
			loaded[strings.ToUpper(key)] = v.GetString(key)
		}
	}

	envMu.Lock()
	envFile = loaded
	envMu.Unlock()

	if missing == len(files) {
		return errors.New("no .env file found for " + env)
	}
	return nil
}

func isPathError(err error) bool {
	var pe *os.PathError
	return errors.As(err, &pe)
}

// GetEnv 读取环境变量，未设置时回退到 .env 文件中的值
func GetEnv(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	envMu.RLock()
	defer envMu.RUnlock()
	return envFile[key]
}

// GetEnvOr 读取环境变量，为空时返回默认值
func GetEnvOr(key, def string) string {
	if v := GetEnv(key); v != "" {
		return v
	}
	return def
}

func GetIntEnv(key string) int64 {
	return cast.ToInt64(GetEnv(key))
}

func GetIntEnvOr(key string, def int64) int64 {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return def
	}
	return n
}

func GetBoolEnv(key string) bool {
	return cast.ToBool(GetEnv(key))
}

func GetBoolEnvOr(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// GetDurationEnv 支持 "30s"、"5m" 等格式，也接受纯数字（按纳秒）
func GetDurationEnv(key string, def time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return def
	}
	return d
}
