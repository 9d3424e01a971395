package database

import (
	"fmt"
	"net/url"
	"strings"
)

// MigrateURL 把 gorm 用的 DSN 转成 golang-migrate 需要的数据库 URL。
// sqlite 只走 AutoMigrate，不在此支持。
func MigrateURL(o Opts) (string, error) {
	dsn := strings.TrimSpace(o.DSN)
	switch o.Driver {
	case "postgres":
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			return dsn, nil
		}
		return pgKeywordsToURL(dsn, o.Username, o.Password)
	case "mysql":
		native := normalizeMySQLDSN(dsn, o.Username, o.Password)
		if strings.Contains(native, "multiStatements=") {
			return "mysql://" + native, nil
		}
		sep := "?"
		if strings.Contains(native, "?") {
			sep = "&"
		}
		return "mysql://" + native + sep + "multiStatements=true", nil
	}
	return "", fmt.Errorf("%w for migrations: %q", ErrUnsupportedDriver, o.Driver)
}

// pgKeywordsToURL 处理 "host=... user=... dbname=..." 形式
func pgKeywordsToURL(dsn, userOverride, passOverride string) (string, error) {
	kv := map[string]string{}
	for _, f := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return "", fmt.Errorf("database: malformed postgres dsn field %q", f)
		}
		kv[k] = strings.Trim(v, "'")
	}
	if userOverride != "" {
		kv["user"] = userOverride
	}
	if passOverride != "" {
		kv["password"] = passOverride
	}
	host := kv["host"]
	if host == "" {
		host = "localhost"
	}
	if p := kv["port"]; p != "" {
		host += ":" + p
	}
	u := url.URL{Scheme: "postgres", Host: host, Path: "/" + kv["dbname"]}
	switch {
	case kv["user"] != "" && kv["password"] != "":
		u.User = url.UserPassword(kv["user"], kv["password"])
	case kv["user"] != "":
		u.User = url.User(kv["user"])
	}
	q := url.Values{}
	for k, v := range kv {
		switch k {
		case "host", "port", "user", "password", "dbname":
		default:
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
