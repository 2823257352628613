package contests

import (
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetContests lists contests, optionally only those open to a contestant's age and education level
// @Summary List contests
// @Tags Contests
// @Produce json
// @Param targetGroup query string false "Target group code"
// @Param eduLevel query string false "Education level of the contestant"
// @Param age query int false "Age of the contestant"
// @Param method query string false "ONLINE or PHYSICAL"
// @Success 200 {array} models.Contest
// @Router /contests [get]
func GetContests(c *gin.Context) {
	query := database.DB.Model(&models.Contest{})
	if method := strings.ToUpper(c.Query("method")); method != "" {
		query = query.Where("method = ?", method)
	}

	tg := database.DB.Table("contest_target_groups").
		Select("contest_target_groups.contest_id").
		Joins("JOIN target_groups ON target_groups.id = contest_target_groups.target_group_id")
	filtered := false
	if code := c.Query("targetGroup"); code != "" {
		tg = tg.Where("target_groups.code = ?", code)
		filtered = true
	}
	if level := strings.ToLower(c.Query("eduLevel")); level != "" {
		tg = tg.Where("LOWER(target_groups.school_level) = ?", level)
		filtered = true
	}
	if age := utils.QueryUint(c, "age"); age != nil {
		tg = tg.Where("target_groups.min_age <= ? AND (target_groups.max_age = 0 OR target_groups.max_age >= ?)", *age, *age)
		filtered = true
	}
	if filtered {
		query = query.Where("id IN (?)", tg)
	}

	contests := []models.Contest{}
	if err := query.Preload("TargetGroups").Order("name").Find(&contests).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGetContests)
		return
	}
	c.JSON(http.StatusOK, contests)
}

// GetContest returns one contest with its target groups
// @Summary Get a contest
// @Tags Contests
// @Produce json
// @Param id path int true "Contest ID"
// @Success 200 {object} models.Contest
// @Failure 404 {object} map[string]string
// @Router /contests/{id} [get]
func GetContest(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var contest models.Contest
	if err := database.DB.Preload("TargetGroups").First(&contest, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContestNotFound)
		return
	}
	c.JSON(http.StatusOK, contest)
}

func (req *ContestRequest) apply(contest *models.Contest) {
	contest.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	contest.Name = strings.TrimSpace(req.Name)
	contest.Description = req.Description
	contest.ContestType = req.ContestType
	contest.Method = req.Method
	if contest.Method == "" {
		contest.Method = models.MethodPhysical
	}
	contest.JudgingMethod = req.JudgingMethod
	if contest.JudgingMethod == "" {
		contest.JudgingMethod = "AI"
	}
	contest.StartDate = req.StartDate
	contest.EndDate = req.EndDate
	contest.ParticipationMode = req.ParticipationMode
	if contest.ParticipationMode == "" {
		contest.ParticipationMode = models.ParticipationIndividual
	}
	contest.MaxMembersPerTeam = req.MaxMembersPerTeam
}

func (req *ContestRequest) validDates() bool {
	return req.StartDate == nil || req.EndDate == nil || req.EndDate.After(*req.StartDate)
}

func loadTargetGroups(tx *gorm.DB, ids []uint) ([]models.TargetGroup, error) {
	groups := []models.TargetGroup{}
	if len(ids) == 0 {
		return groups, nil
	}
	err := tx.Where("id IN ?", ids).Find(&groups).Error
	return groups, err
}

// CreateContest creates a contest with its target groups
// @Summary Create a contest
// @Tags Contests
// @Accept json
// @Produce json
// @Param contest body ContestRequest true "Contest"
// @Success 201 {object} models.Contest
// @Failure 400,409,500 {object} map[string]string
// @Router /organizer/contests [post]
// @Security Bearer
func CreateContest(c *gin.Context) {
	var req ContestRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if !req.validDates() {
		response.Error(c, http.StatusBadRequest, ErrInvalidDates)
		return
	}

	var count int64
	database.DB.Model(&models.Contest{}).Where("code = ?", strings.ToUpper(strings.TrimSpace(req.Code))).Count(&count)
	if count > 0 {
		response.Error(c, http.StatusConflict, ErrCodeTaken)
		return
	}

	var contest models.Contest
	req.apply(&contest)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		groups, err := loadTargetGroups(tx, req.TargetGroupIDs)
		if err != nil {
			return err
		}
		contest.TargetGroups = groups
		return tx.Create(&contest).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToCreate)
		return
	}
	c.JSON(http.StatusCreated, contest)
}

// UpdateContest updates a contest and replaces its target groups
// @Summary Update a contest
// @Tags Contests
// @Accept json
// @Produce json
// @Param id path int true "Contest ID"
// @Param contest body ContestRequest true "Contest"
// @Success 200 {object} models.Contest
// @Failure 400,404,409,500 {object} map[string]string
// @Router /organizer/contests/{id} [put]
// @Security Bearer
func UpdateContest(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var contest models.Contest
	if err := database.DB.First(&contest, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContestNotFound)
		return
	}

	var req ContestRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if !req.validDates() {
		response.Error(c, http.StatusBadRequest, ErrInvalidDates)
		return
	}
	var count int64
	database.DB.Model(&models.Contest{}).Where("code = ? AND id <> ?", strings.ToUpper(strings.TrimSpace(req.Code)), id).Count(&count)
	if count > 0 {
		response.Error(c, http.StatusConflict, ErrCodeTaken)
		return
	}

	req.apply(&contest)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&contest).Error; err != nil {
			return err
		}
		groups, err := loadTargetGroups(tx, req.TargetGroupIDs)
		if err != nil {
			return err
		}
		return tx.Model(&contest).Association("TargetGroups").Replace(groups)
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToUpdate)
		return
	}
	database.DB.Preload("TargetGroups").First(&contest, id)
	c.JSON(http.StatusOK, contest)
}

// DeleteContest removes a contest without teams or event registrations
// @Summary Delete a contest
// @Tags Contests
// @Param id path int true "Contest ID"
// @Success 204
// @Failure 404,409,500 {object} map[string]string
// @Router /organizer/contests/{id} [delete]
// @Security Bearer
func DeleteContest(c *gin.Context) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var contest models.Contest
	if err := database.DB.First(&contest, id).Error; err != nil {
		response.Error(c, http.StatusNotFound, ErrContestNotFound)
		return
	}

	var teams, eventContests int64
	database.DB.Model(&models.Team{}).Where("contest_id = ?", id).Count(&teams)
	database.DB.Model(&models.EventContest{}).Where("contest_id = ?", id).Count(&eventContests)
	if teams+eventContests > 0 {
		response.Error(c, http.StatusConflict, ErrContestInUse)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&contest).Association("TargetGroups").Clear(); err != nil {
			return err
		}
		return tx.Delete(&contest).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToDelete)
		return
	}
	c.Status(http.StatusNoContent)
}
