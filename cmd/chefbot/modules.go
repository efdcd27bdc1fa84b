package main

// Compiled modules. Each registers itself with core in init().
import (
	_ "github.com/flemzord/chefbot/internal/gateway"
	_ "github.com/flemzord/chefbot/modules/memory/redis"
	_ "github.com/flemzord/chefbot/modules/memory/sqlite"
	_ "github.com/flemzord/chefbot/modules/provider/anthropic"
	_ "github.com/flemzord/chefbot/modules/provider/openai"
)
