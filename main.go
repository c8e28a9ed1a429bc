package main

import "Gin_postgres_redis_rental_kiosk/commands"

func main() {
	commands.Execute()
}
