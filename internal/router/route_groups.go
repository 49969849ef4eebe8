package router

import (
	"github.com/gin-gonic/gin"

	"venue_ops_backend/internal/handlers"
	"venue_ops_backend/internal/middleware"
	"venue_ops_backend/internal/models"
)

// SetupPublicGuestRoutes registers the guest-facing routes. These are the
// only unauthenticated endpoints besides login.
func SetupPublicGuestRoutes(apiGroup *gin.RouterGroup, guestPageHandler *handlers.GuestPageHandler, tipHandler *handlers.TipHandler) {
	publicRoutes := apiGroup.Group("/public")
	{
		publicRoutes.GET("/guest-pages/:token", guestPageHandler.PublicLookup)
		publicRoutes.GET("/guest-pages/:token/can-tip", tipHandler.CanTip)
		publicRoutes.POST("/tips", tipHandler.RecordTip)
	}
}

// SetupUserRoutes sets up staff account administration routes.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		userRoutes.POST("", authHandler.Register)
		userRoutes.GET("", authHandler.ListUsers)
		userRoutes.PUT("/:id", authHandler.UpdateUser)
	}
}

// SetupGuestPageRoutes sets up the staff-side guest page routes.
func SetupGuestPageRoutes(authenticatedGroup *gin.RouterGroup, guestPageHandler *handlers.GuestPageHandler) {
	pageRoutes := authenticatedGroup.Group("/guest-pages")
	pageRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
	{
		pageRoutes.POST("", guestPageHandler.CreateGuestPage)
		pageRoutes.GET("", guestPageHandler.ListGuestPages)
		pageRoutes.GET("/:id", guestPageHandler.GetGuestPage)
		pageRoutes.PUT("/:id", guestPageHandler.UpdateGuestPage)
		pageRoutes.DELETE("/:id", guestPageHandler.DeleteGuestPage)
		pageRoutes.GET("/:id/assignments", guestPageHandler.ListAssignments)
		pageRoutes.POST("/:id/assignments", guestPageHandler.AssignStaff)
		pageRoutes.DELETE("/:id/assignments/:staffId", guestPageHandler.UnassignStaff)
	}
}

// SetupWalletRoutes lets every staff member manage their own payout address.
func SetupWalletRoutes(authenticatedGroup *gin.RouterGroup, guestPageHandler *handlers.GuestPageHandler) {
	walletRoutes := authenticatedGroup.Group("/wallet")
	{
		walletRoutes.GET("", guestPageHandler.GetWallet)
		walletRoutes.PUT("", guestPageHandler.SetWallet)
	}
}

// SetupTipRoutes sets up the staff-side tip ledger routes.
func SetupTipRoutes(authenticatedGroup *gin.RouterGroup, tipHandler *handlers.TipHandler) {
	tipRoutes := authenticatedGroup.Group("/tips")
	{
		tipRoutes.GET("/mine", tipHandler.MyTips)

		managerRoutes := tipRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.GET("/staff/:staffId", tipHandler.ListTipsByStaff)
		}
	}
}

// SetupStayRoutes sets up multi-night reservation routes.
func SetupStayRoutes(authenticatedGroup *gin.RouterGroup, reservationHandler *handlers.ReservationHandler) {
	stayRoutes := authenticatedGroup.Group("/stays")
	{
		stayRoutes.GET("", reservationHandler.ListStays)
		stayRoutes.GET("/:id", reservationHandler.GetStay)
		stayRoutes.GET("/:id/assignments", reservationHandler.ListAssignments)

		managerRoutes := stayRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.POST("", reservationHandler.CreateStay)
			managerRoutes.PUT("/:id", reservationHandler.UpdateStay)
			managerRoutes.POST("/:id/cancel", reservationHandler.CancelStay)
			managerRoutes.POST("/:id/assignments", reservationHandler.CreateAssignment)
			managerRoutes.DELETE("/:id/assignments/:assignmentId", reservationHandler.DeleteAssignment)
			managerRoutes.POST("/:id/assignments/:assignmentId/reminders", reservationHandler.MarkReminderSent)
		}
	}
}

// SetupMealRoutes sets up single-meal reservation routes.
func SetupMealRoutes(authenticatedGroup *gin.RouterGroup, reservationHandler *handlers.ReservationHandler) {
	mealRoutes := authenticatedGroup.Group("/meals")
	{
		mealRoutes.GET("", reservationHandler.ListMeals)
		mealRoutes.GET("/:id", reservationHandler.GetMeal)

		managerRoutes := mealRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.POST("", reservationHandler.CreateMeal)
			managerRoutes.PUT("/:id", reservationHandler.UpdateMeal)
			managerRoutes.POST("/:id/cancel", reservationHandler.CancelMeal)
		}
	}
}

// SetupChecklistRoutes sets up template and daily checklist routes.
func SetupChecklistRoutes(authenticatedGroup *gin.RouterGroup, checklistHandler *handlers.ChecklistHandler) {
	templateRoutes := authenticatedGroup.Group("/checklist-templates")
	{
		templateRoutes.GET("", checklistHandler.ListTemplates)
		templateRoutes.GET("/:id", checklistHandler.GetTemplate)

		managerRoutes := templateRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.POST("", checklistHandler.CreateTemplate)
			managerRoutes.PUT("/:id", checklistHandler.UpdateTemplate)
		}
	}

	checklistRoutes := authenticatedGroup.Group("/daily-checklists")
	{
		checklistRoutes.GET("", checklistHandler.ListDailyChecklists)
		checklistRoutes.GET("/:id", checklistHandler.GetDailyChecklist)
		checklistRoutes.POST("", checklistHandler.InstantiateChecklist)
		checklistRoutes.PUT("/:id/entries/:itemId", checklistHandler.ToggleEntry)
	}
}

// SetupAttendanceRoutes sets up shift and timecard routes.
func SetupAttendanceRoutes(authenticatedGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler) {
	shiftRoutes := authenticatedGroup.Group("/shifts")
	{
		shiftRoutes.GET("/month/:month", attendanceHandler.GetMonthShifts)
		shiftRoutes.PUT("/month/:month", attendanceHandler.BulkUpdateMonth)

		managerRoutes := shiftRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.GET("/date/:date", attendanceHandler.ListShiftsForDate)
		}
	}

	timecardRoutes := authenticatedGroup.Group("/timecards")
	{
		timecardRoutes.GET("/today", attendanceHandler.GetToday)
		timecardRoutes.POST("/clock-in", attendanceHandler.ClockIn)
		timecardRoutes.POST("/clock-out", attendanceHandler.ClockOut)
		timecardRoutes.POST("/break-start", attendanceHandler.StartBreak)
		timecardRoutes.POST("/break-end", attendanceHandler.EndBreak)
		timecardRoutes.GET("/month/:month", attendanceHandler.GetMonthTimecard)

		managerRoutes := timecardRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.PUT("/users/:userId/:date", attendanceHandler.EditTimeRecord)
			managerRoutes.GET("/users/:userId/export/:month", attendanceHandler.ExportMonthCSV)
		}
	}
}

// SetupInventoryRoutes sets up inventory routes.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryRoutes := authenticatedGroup.Group("/inventory-items")
	{
		inventoryRoutes.GET("", inventoryHandler.ListItems)
		inventoryRoutes.GET("/:id", inventoryHandler.GetItem)
		inventoryRoutes.GET("/:id/logs", inventoryHandler.ListLogs)
		inventoryRoutes.POST("/:id/adjustments", inventoryHandler.AdjustStock)

		managerRoutes := inventoryRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.POST("", inventoryHandler.CreateItem)
			managerRoutes.PUT("/:id", inventoryHandler.UpdateItem)
			managerRoutes.DELETE("/:id", inventoryHandler.DeleteItem)
		}
	}
}

// SetupAnnouncementRoutes sets up announcement routes.
func SetupAnnouncementRoutes(authenticatedGroup *gin.RouterGroup, announcementHandler *handlers.AnnouncementHandler) {
	announcementRoutes := authenticatedGroup.Group("/announcements")
	{
		announcementRoutes.GET("", announcementHandler.ListAnnouncements)
		announcementRoutes.GET("/:id", announcementHandler.GetAnnouncement)

		managerRoutes := announcementRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.POST("", announcementHandler.CreateAnnouncement)
			managerRoutes.PUT("/:id", announcementHandler.UpdateAnnouncement)
			managerRoutes.DELETE("/:id", announcementHandler.DeleteAnnouncement)
		}
	}
}

// SetupAvailabilityRoutes sets up the external availability routes.
func SetupAvailabilityRoutes(authenticatedGroup *gin.RouterGroup, availabilityHandler *handlers.AvailabilityHandler) {
	availabilityRoutes := authenticatedGroup.Group("/availability")
	{
		availabilityRoutes.GET("", availabilityHandler.GetSnapshot)

		managerRoutes := availabilityRoutes.Group("")
		managerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.DELETE("/cache", availabilityHandler.Invalidate)
		}
	}
}
