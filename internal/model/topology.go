package model

import (
	"fmt"
	"strings"
)

// Topology геометрический тип перекрестка
type Topology string

const (
	FourWay    Topology = "Four-Way"
	TJunction  Topology = "T-Junction"
	Roundabout Topology = "Roundabout"
	Diamond    Topology = "Diamond"
)

// Topologies перечисляет поддерживаемые типы в порядке отображения
var Topologies = []Topology{FourWay, TJunction, Roundabout, Diamond}

// DirectionCount возвращает число направлений (сигналов) перекрестка
func (t Topology) DirectionCount() (int, error) {
	switch t {
	case FourWay, Roundabout, Diamond:
		return 4, nil
	case TJunction:
		return 3, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedTopology, string(t))
	}
}

// String возвращает подпись в том виде, в каком ее присылает фронтенд
func (t Topology) String() string {
	return string(t)
}

// Slug используется в именах выходных файлов
func (t Topology) Slug() string {
	return strings.ToLower(string(t))
}

// ParseTopology разбирает подпись перекрестка.
// Регистр, пробелы, дефисы и суффикс "Intersection" игнорируются.
func ParseTopology(value string) (Topology, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.TrimSuffix(key, "intersection")
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)

	switch key {
	case "fourway", "4way", "cross":
		return FourWay, nil
	case "tjunction", "t", "tee":
		return TJunction, nil
	case "roundabout":
		return Roundabout, nil
	case "diamond":
		return Diamond, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedTopology, value)
}
