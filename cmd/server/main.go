// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus_care_backend/internal/auth"
	"campus_care_backend/internal/common"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/user"

	"go.uber.org/zap"
)

func main() {
	promoteCmd := flag.NewFlagSet("promote", flag.ExitOnError)
	email := promoteCmd.String("email", "", "Email of the account to promote")
	role := promoteCmd.String("role", common.RoleAdmin, "New role (admin, supervisor or student)")
	department := promoteCmd.String("department", "", "Department, required for supervisors")

	if len(os.Args) > 1 && os.Args[1] == "promote" {
		_ = promoteCmd.Parse(os.Args[2:])
		if *email == "" {
			promoteCmd.Usage()
			os.Exit(2)
		}
		if err := runPromote(*email, *role, *department); err != nil {
			log.Fatalf("FATAL: promote failed: %v", err)
		}
		return
	}

	// Default: Start server
	startServer()
}

// runPromote sets a user's role and department directly in the database.
func runPromote(email, role, department string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	appLogger, syncLogger, err := provideLogger(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer syncLogger()

	db, closeDB, err := provideDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	service := user.NewService(user.NewGORMRepository(db), auth.NewJWTService(cfg, appLogger), appLogger)
	u, err := service.Promote(ctx, user.NormalizeEmail(email), role, department)
	if err != nil {
		return err
	}
	appLogger.Info("Promotion completed", zap.String("email", u.Email), zap.String("role", u.Role))
	fmt.Printf("%s is now %s\n", u.Email, u.Role)
	return nil
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}
