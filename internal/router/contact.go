package router

import "github.com/gin-gonic/gin"

func (r *Router) contactRoutes(api *gin.RouterGroup) {
	contacts := api.Group("/contacts")
	contacts.Use(r.defaultLimit())
	contacts.Use(r.jwtMw.RequireAuth())
	{
		contacts.GET("/all", r.contactHandler.GetAll)
		contacts.POST("/create", r.contactHandler.Create)
		contacts.GET("/read/:id", r.contactHandler.GetByID)
		contacts.PUT("/update/:id", r.contactHandler.Update)
		contacts.DELETE("/delete/:id", r.contactHandler.Delete)
		contacts.GET("/search", r.contactHandler.Search)
		contacts.GET("/upcoming_birthdays", r.contactHandler.UpcomingBirthdays)
	}
}
