package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSnapshotID gera o id de um snapshot de relatório
func GenerateSnapshotID() (string, error) {
	return gonanoid.Generate(characters, 12)
}
