package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_URL=mysql://root:root@(127.0.0.1:3306)/bugtrack?charset=utf8mb4&parseTime=True&loc=Local
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	url := os.ExpandEnv(os.Getenv("DATABASE_URL"))
	if url == "" {
		return nil, errors.New("environment variable DATABASE_URL is not set")
	}
	idx := strings.Index(url, "://")
	if idx <= 0 {
		return nil, fmt.Errorf("invalid DATABASE_URL %q", url)
	}
	return &DatabaseConfig{DriverType: url[0:idx], DriverArgs: url[idx+3:]}, nil
}

// PrepareMysqlDatabase create the database when absent (no conflict when it exists).
func PrepareMysqlDatabase(driverArgs string) error {
	idx := strings.Index(driverArgs, "/")
	if idx < 0 {
		return fmt.Errorf("invalid database connection args %q", driverArgs)
	}
	baseArgs := driverArgs[0 : idx+1]
	dbName := driverArgs[idx+1:]
	if argsIdx := strings.Index(dbName, "?"); argsIdx >= 0 {
		dbName = dbName[0:argsIdx]
	}
	if dbName == "" {
		return fmt.Errorf("database name is missing in connection args %q", driverArgs)
	}

	db, err := sql.Open("mysql", baseArgs)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + dbName + "` CHARACTER SET utf8mb4")
	return err
}
