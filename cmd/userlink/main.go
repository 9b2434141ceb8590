package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"shop/internal/infra/token"
	"shop/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// botと同じシークレットで購入者用のストアURLを作る（運用・動作確認用）
func main() {
	userID := pflag.Int64("user-id", 0, "Telegram user id")
	ttl := pflag.Duration("ttl", 24*time.Hour, "link lifetime")
	baseURL := pflag.String("base-url", "http://localhost:8080/products", "storefront page to open")
	pflag.Parse()

	_ = godotenv.Load()

	log, err := logging.New("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	raw, err := token.SignUserLink(os.Getenv("USER_LINK_SECRET"), *userID, time.Now(), *ttl)
	if err != nil {
		log.Fatal("sign user link", zap.Int64("user_id", *userID), zap.Error(err))
	}

	u, err := url.Parse(*baseURL)
	if err != nil {
		log.Fatal("invalid base url", zap.Error(err))
	}
	q := u.Query()
	q.Set("user_id", strconv.FormatInt(*userID, 10))
	q.Set("link", raw)
	u.RawQuery = q.Encode()

	fmt.Println(u.String())
}
