// Command admintoken 使用配置中的 jwt.secret 签发一个管理员 token，用于调用 /sync_destinations。
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"kanto-ml/internal/config"
	"kanto-ml/pkg/token"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	username := flag.String("user", "admin", "写入 token 的用户名")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if !cfg.JWT.AdminEnabled() {
		fmt.Fprintln(os.Stderr, "jwt.secret 未设置或为占位值，请设置 JWT_SECRET")
		os.Exit(1)
	}

	tok, err := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours).GenerateToken(*username, token.RoleAdmin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
