package main

import (
	"os"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/internal/service"
	"filing-advisor-go/pkg/database"
	"filing-advisor-go/pkg/log"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users referenced by audit entries",
}

var (
	seedEmail    string
	seedPassword string
	seedRole     string
)

var userSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create or update a user (password from --password or ADVISOR_SEED_PASSWORD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		password := seedPassword
		if password == "" {
			password = os.Getenv("ADVISOR_SEED_PASSWORD")
		}
		if password == "" {
			return eris.New("user seed: --password or ADVISOR_SEED_PASSWORD is required")
		}

		// 只需要 MySQL，不连接向量索引
		db, err := database.NewMySQL(cfg.Database.MySQL.DSN)
		if err != nil {
			return err
		}
		if cfg.Database.MySQL.AutoMigrate {
			if err := database.AutoMigrate(db, &model.User{}); err != nil {
				return err
			}
		}

		user, created, err := service.NewUserService(repository.NewUserRepository(db)).Seed(ctx, seedEmail, password, seedRole)
		if err != nil {
			return err
		}
		if created {
			log.Infof("用户已创建: id=%d email=%s role=%s", user.ID, user.Email, user.Role)
		} else {
			log.Infof("用户已更新: id=%d email=%s role=%s", user.ID, user.Email, user.Role)
		}
		return nil
	},
}

func init() {
	userSeedCmd.Flags().StringVar(&seedEmail, "email", "", "user email (required)")
	userSeedCmd.Flags().StringVar(&seedPassword, "password", "", "user password")
	userSeedCmd.Flags().StringVar(&seedRole, "role", model.RoleAdvisor, "advisor | admin")
	_ = userSeedCmd.MarkFlagRequired("email")
	userCmd.AddCommand(userSeedCmd)
}
