// Package model defines the database models for the password manager.
//
// This package contains GORM models that map to the password manager schema.
// The schema lives in db/migrations and is applied with "passmgrctl db migrate".
//
// # Models
//
//   - User: the owning user row, referenced by every other table
//   - PasswordHistory: one previous (already encrypted) password of a user
//   - PasswordExpiry: the password validity window of a user, in days
//
// # Database Schema
//
//   - users: FK target for the tables below
//   - password_history: bounded per-user history, ordered by id
//   - password_expiry: one row per user, cascades with the user
package model
