// Package database embed dosyası — migration SQL dosyalarını binary'ye gömer.
//
// Go'nun embed paketi, derleme zamanında dosyaları binary'nin içine gömer.
// Bu sayede deploy edilen binary yanında migration dosyalarına ihtiyaç duymaz.
package database

import "embed"

// EmbeddedMigrations, migrations/ dizinindeki goose SQL dosyalarını içerir.
// migrate() bunu fs.Sub ile alt dizine indirip goose'a verir.
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS
