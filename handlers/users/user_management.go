package users

import (
	"errors"
	"net/http"
	"strings"

	"techlympics/config"
	"techlympics/database"
	"techlympics/middleware"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func defaultPassword() string {
	if config.DefaultPassword != "" {
		return config.DefaultPassword
	}
	return database.DefaultPassword
}

// newUser builds an active account, falling back to the default password
func newUser(name, username, email, role, phone, password string) (*models.User, error) {
	if password == "" {
		password = defaultPassword()
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: hashedPassword,
		Role:     role,
		Phone:    phone,
		IsActive: true,
	}
	if username = strings.TrimSpace(username); username != "" {
		user.Username = &username
	}
	return user, nil
}

// conflictMessage reports which unique field is already taken, excluding the user being edited
func conflictMessage(db *gorm.DB, email, username string, excludeID uint) string {
	var count int64
	if email != "" {
		db.Model(&models.User{}).Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), excludeID).Count(&count)
		if count > 0 {
			return ErrEmailInUse
		}
	}
	if username != "" {
		db.Model(&models.User{}).Where("username = ? AND id <> ?", username, excludeID).Count(&count)
		if count > 0 {
			return ErrUsernameInUse
		}
	}
	return ""
}

func findUser(c *gin.Context) (*models.User, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrUserNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGetUsers)
		}
		return nil, false
	}
	return &user, true
}

// GetUsers lists accounts with optional role, status and text filters
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Role"
// @Param active query bool false "Only active or inactive accounts"
// @Param search query string false "Name, username or email"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /organizer/users [get]
// @Security Bearer
func GetUsers(c *gin.Context) {
	pagination := utils.GetPagination(c)

	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		like := "%" + search + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?)", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetUsers)
		return
	}
	users := []models.User{}
	if err := query.Scopes(pagination.Scope).Order("name ASC").Find(&users).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetUsers)
		return
	}
	response.Paginated(c, users, pagination.WithTotal(total))
}

// GetUser returns one account
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string
// @Router /organizer/users/{id} [get]
// @Security Bearer
func GetUser(c *gin.Context) {
	user, ok := findUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser creates an account, without a password the default password is used
// @Summary Create a user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/users [post]
// @Security Bearer
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	if msg := conflictMessage(database.DB, req.Email, strings.TrimSpace(req.Username), 0); msg != "" {
		response.Error(c, http.StatusConflict, msg)
		return
	}

	user, err := newUser(req.Name, req.Username, req.Email, req.Role, req.Phone, req.Password)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrHashPasswordFailed)
		return
	}
	if err := database.DB.Create(user).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToCreateUser)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser edits another account's details
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body UpdateUserRequest true "User"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/users/{id} [put]
// @Security Bearer
func UpdateUser(c *gin.Context) {
	user, ok := findUser(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if msg := conflictMessage(database.DB, req.Email, username, user.ID); msg != "" {
		response.Error(c, http.StatusConflict, msg)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if username != "" {
		updates["username"] = username
	}
	if req.Email != "" {
		updates["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) > 0 {
		if err := database.DB.Model(user).Updates(updates).Error; err != nil {
			response.Error(c, http.StatusInternalServerError, ErrFailedToUpdateUser)
			return
		}
	}
	if err := database.DB.First(user, user.ID).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetUsers)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser deletes an account together with its manager links and pending requests
// @Summary Delete a user
// @Tags Users
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/users/{id} [delete]
// @Security Bearer
func DeleteUser(c *gin.Context) {
	currentUser, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	target, ok := findUser(c)
	if !ok {
		return
	}
	if target.ID == currentUser.ID {
		response.Error(c, http.StatusBadRequest, ErrCannotModifySelf)
		return
	}

	if status, msg := deleteUsers(database.DB, []uint{target.ID}); status != 0 {
		response.Error(c, status, msg)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDeleteUsers deletes several accounts at once
// @Summary Delete users
// @Tags Users
// @Accept json
// @Param ids body BulkDeleteRequest true "User IDs"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/users [delete]
// @Security Bearer
func BulkDeleteUsers(c *gin.Context) {
	currentUser, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	var req BulkDeleteRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	for _, id := range req.IDs {
		if id == currentUser.ID {
			response.Error(c, http.StatusBadRequest, ErrCannotModifySelf)
			return
		}
	}

	if status, msg := deleteUsers(database.DB, req.IDs); status != 0 {
		response.Error(c, status, msg)
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteUsers removes the accounts in one transaction, it returns a zero status on success
func deleteUsers(db *gorm.DB, ids []uint) (int, string) {
	var owners int64
	if err := db.Model(&models.ContingentManager{}).Where("user_id IN ? AND is_owner = ?", ids, true).Count(&owners).Error; err != nil {
		return http.StatusInternalServerError, ErrFailedToDeleteUsers
	}
	if owners > 0 {
		return http.StatusConflict, ErrUserOwnsContingent
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, model := range []interface{}{&models.ContingentManager{}, &models.ContingentRequest{}, &models.PasswordReset{}} {
		if err := tx.Where("user_id IN ?", ids).Delete(model).Error; err != nil {
			tx.Rollback()
			return http.StatusInternalServerError, ErrFailedToDeleteUsers
		}
	}
	if err := tx.Model(&models.JudgingSession{}).Where("judge_id IN ?", ids).Update("judge_id", nil).Error; err != nil {
		tx.Rollback()
		return http.StatusInternalServerError, ErrFailedToDeleteUsers
	}

	result := tx.Where("id IN ?", ids).Delete(&models.User{})
	if result.Error != nil {
		tx.Rollback()
		return http.StatusInternalServerError, ErrFailedToDeleteUsers
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return http.StatusNotFound, ErrUserNotFound
	}

	if err := tx.Commit().Error; err != nil {
		return http.StatusInternalServerError, ErrFailedToDeleteUsers
	}
	return 0, ""
}

// ToggleBlockUser flips an account between active and deactivated
// @Summary Toggle a user's active flag
// @Tags Users
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/users/{id}/block [put]
// @Security Bearer
func ToggleBlockUser(c *gin.Context) {
	currentUser, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	target, ok := findUser(c)
	if !ok {
		return
	}
	if target.ID == currentUser.ID {
		response.Error(c, http.StatusBadRequest, ErrCannotModifySelf)
		return
	}

	target.IsActive = !target.IsActive
	if err := database.DB.Model(target).Update("is_active", target.IsActive).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToUpdateUser)
		return
	}
	c.JSON(http.StatusOK, target)
}
