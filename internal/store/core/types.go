package core

import "time"

// Account es la cuenta identificada por email con su token opaco.
//
// Email se guarda EXACTAMENTE como llegó (sin lowercase ni trim): es la
// clave natural única y no aplicamos normalización. Token se emite una sola
// vez al crear la cuenta y nunca se regenera.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
