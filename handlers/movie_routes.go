// handlers/movie_routes.go
package handlers

import (
	"strconv"

	"auracoins-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMovieRoutes(app *fiber.App, movieService *services.MovieService) {
	// Read-only catalog proxy; serves the bundled example catalog when the
	// upstream API is not configured or unreachable.
	app.Get("/movies/netflix", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		movies, err := movieService.GetNetflixMovies(page)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch movies",
			})
		}
		return c.JSON(fiber.Map{"movies": movies})
	})
}
