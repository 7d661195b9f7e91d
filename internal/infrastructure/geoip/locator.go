package geoip

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/bibbank/cardrisk/internal/domain/port"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
)

// cityReader is satisfied by *geoip2.Reader.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// Locator implements port.GeoLocator over a MaxMind City database. Countries
// are reported as ISO 3166-1 alpha-2 codes and cities by their English name.
type Locator struct {
	db cityReader
}

var _ port.GeoLocator = (*Locator)(nil)

// Open loads the City database at path.
func Open(path string) (*Locator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}
	return &Locator{db: db}, nil
}

// Locate resolves ip. Addresses missing from the database yield a zero
// Location and no error.
func (l *Locator) Locate(_ context.Context, ip string) (valueobject.Location, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return valueobject.Location{}, fmt.Errorf("invalid ip address %q", ip)
	}

	rec, err := l.db.City(addr)
	if err != nil {
		return valueobject.Location{}, fmt.Errorf("failed to look up %s: %w", ip, err)
	}

	return valueobject.NewLocation(
		rec.Country.IsoCode,
		rec.City.Names["en"],
		rec.Postal.Code,
	), nil
}

// Close releases the database.
func (l *Locator) Close() error {
	return l.db.Close()
}
