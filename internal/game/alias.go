package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

var aliasAdjectives = []string{
	"Brave", "Clever", "Dapper", "Eager", "Fuzzy", "Giddy", "Jolly", "Keen",
	"Lucky", "Mellow", "Nimble", "Plucky", "Quirky", "Snazzy", "Witty", "Zesty",
}

var aliasAnimals = []string{
	"Badger", "Condor", "Dingo", "Ferret", "Gecko", "Heron", "Iguana", "Jackal",
	"Lemur", "Marmot", "Narwhal", "Otter", "Puffin", "Toucan", "Walrus", "Yak",
}

func randomAlias() string {
	adjective := aliasAdjectives[rand.Intn(len(aliasAdjectives))]
	animal := aliasAnimals[rand.Intn(len(aliasAnimals))]
	return adjective + " " + animal
}

// fallbackAlias produces an alias that cannot collide with the generated pool,
// so joining never fails solely because the room exhausted the name scheme.
func fallbackAlias() string {
	return fmt.Sprintf("Player %s", uuid.NewString()[:8])
}
