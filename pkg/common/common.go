package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	rand.Seed(time.Now().UnixNano())
	var err error
	snowflakeNode, err = snowflake.NewNode(int64(rand.Intn(1023)))
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a snowflake based int64 id
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake based string id
func UUID() string {
	return snowflakeNode.Generate().String()
}

// GetSecretSalt reads the password salt from env, with a static fallback
func GetSecretSalt() string {
	salt := os.Getenv("TOUGHWMS_SECRET_SALT")
	if salt == "" {
		salt = "toughwms-salt"
	}
	return salt
}

// Sha256HashWithSalt hash with salt
func Sha256HashWithSalt(src string, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return hex.EncodeToString(h.Sum(nil))
}

// IfEmptyStr returns defval when src is empty
func IfEmptyStr(src string, defval string) string {
	if src == "" {
		return defval
	}
	return src
}

// FileExists checks whether a path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || os.IsExist(err)
}

// MakeDir creates dir if not exists
func MakeDir(path string) {
	if !FileExists(path) {
		_ = os.MkdirAll(path, 0755)
	}
}

// Fmt2dp formats a float with 2 decimal places (display only)
func Fmt2dp(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
