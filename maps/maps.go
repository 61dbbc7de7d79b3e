// SPDX-License-Identifier: GPL-2.0-or-later

// Package maps lists the maps a player can pick.
package maps

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrUnknownMap = errors.New("unknown map")
	ErrBadID      = errors.New("bad map id")
	ErrDuplicate  = errors.New("map already registered")
)

type Map struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Title is the menu text of the map.
func (m Map) Title() string {
	if m.Name == "" {
		return m.ID
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.ID)
}

// FileName is the path of the map relative to the game directory.
func (m Map) FileName() string {
	return "maps/" + m.ID + ".bsp"
}

var (
	Base1    = Map{"base1", "Outer Base"}
	Base2    = Map{"base2", "Installation"}
	Base3    = Map{"base3", "Comm Center"}
	Train    = Map{"train", "Lost Station"}
	Bunk1    = Map{"bunk1", "Ammo Depot"}
	Ware1    = Map{"ware1", "Supply Station"}
	Ware2    = Map{"ware2", "Warehouse"}
	Jail1    = Map{"jail1", "Main Gate"}
	Jail2    = Map{"jail2", "Detention Center"}
	Jail3    = Map{"jail3", "Security Complex"}
	Jail4    = Map{"jail4", "Torture Chambers"}
	Jail5    = Map{"jail5", "Gaurd House"}
	Security = Map{"security", "Grid Control"}
	Mintro   = Map{"mintro", "Mine Entrance"}
	Mine1    = Map{"mine1", "Upper Mines"}
	Mine2    = Map{"mine2", "Bore Hole"}
	Mine3    = Map{"mine3", "Drilling Area"}
	Mine4    = Map{"mine4", "Lower Mines"}
	Fact1    = Map{"fact1", "Receiving Center"}
	Fact2    = Map{"fact2", "Processing Plant"}
	Fact3    = Map{"fact3", "Sudden Death"}
	Power1   = Map{"power1", "Power Plant"}
	Power2   = Map{"power2", "The Reactor"}
	Cool1    = Map{"cool1", "Cooling Facility"}
	Waste1   = Map{"waste1", "Toxic Waste Dump"}
	Waste2   = Map{"waste2", "Pumping Station 1"}
	Waste3   = Map{"waste3", "Pumping Station 2"}
	Biggun   = Map{"biggun", "Big Gun"}
	Hangar1  = Map{"hangar1", "Outer Hangar"}
	Hangar2  = Map{"hangar2", "Inner Hangar"}
	Lab      = Map{"lab", "Research Lab"}
	Command  = Map{"command", "Launch Command"}
	Strike   = Map{"strike", "Outlands"}
	Space    = Map{"space", "Comm Satellite"}
	City1    = Map{"city1", "Outer Courts"}
	City2    = Map{"city2", "Lower Palace"}
	City3    = Map{"city3", "Upper Palace"}
	Boss1    = Map{"boss1", "Inner Chamber"}
	Boss2    = Map{"boss2", "Final Showdown"}
)

type Unit struct {
	Name string
	Maps []Map
}

var (
	U1  = Unit{"Base", []Map{Base1, Base2, Base3}}
	U2  = Unit{"Warehouse", []Map{Train, Bunk1, Ware1, Ware2}}
	U3  = Unit{"Jail", []Map{Jail1, Jail2, Jail3, Jail4, Jail5, Security}}
	U4  = Unit{"Mine", []Map{Mintro, Mine1, Mine2, Mine3, Mine4}}
	U5  = Unit{"Factory", []Map{Fact1, Fact2, Fact3}}
	U6  = Unit{"Power", []Map{Power1, Power2, Cool1, Waste1, Waste2, Waste3}}
	U7  = Unit{"Big Gun", []Map{Biggun}}
	U8  = Unit{"Hangar", []Map{Hangar1, Hangar2, Lab, Command, Strike, Space}}
	U9  = Unit{"City", []Map{City1, City2, City3}}
	U10 = Unit{"Boss", []Map{Boss1, Boss2}}
)

func Units() []Unit {
	return []Unit{U1, U2, U3, U4, U5, U6, U7, U8, U9, U10}
}

// Stock returns the maps of the retail game in menu order.
func Stock() []Map {
	var r []Map
	for _, u := range Units() {
		r = append(r, u.Maps...)
	}
	return r
}

// Catalog is a set of maps keyed by id. Lookups ignore case.
type Catalog struct {
	mutex sync.RWMutex
	maps  []Map
	byID  map[string]int
}

// NewCatalog returns a catalog with the stock maps followed by extra.
func NewCatalog(extra ...Map) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int)}
	for _, m := range Stock() {
		if err := c.Register(m); err != nil {
			return nil, err
		}
	}
	for _, m := range extra {
		if err := c.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// Register adds m to the catalog. Ids are stored lower case.
func (c *Catalog) Register(m Map) error {
	m.ID = strings.ToLower(m.ID)
	if !validID(m.ID) {
		return errors.Wrapf(ErrBadID, "%q", m.ID)
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.byID[m.ID]; ok {
		return errors.Wrapf(ErrDuplicate, "%s", m.ID)
	}
	c.byID[m.ID] = len(c.maps)
	c.maps = append(c.maps, m)
	return nil
}

func (c *Catalog) Lookup(id string) (Map, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	i, ok := c.byID[strings.ToLower(id)]
	if !ok {
		return Map{}, false
	}
	return c.maps[i], true
}

// Get is Lookup with an error for unknown ids.
func (c *Catalog) Get(id string) (Map, error) {
	m, ok := c.Lookup(id)
	if !ok {
		return Map{}, errors.Wrapf(ErrUnknownMap, "%q", id)
	}
	return m, nil
}

// All returns the maps in registration order.
func (c *Catalog) All() []Map {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]Map(nil), c.maps...)
}

func (c *Catalog) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.maps)
}
