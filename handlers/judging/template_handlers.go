package judging

import (
	"encoding/json"
	"errors"
	"net/http"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func findTemplate(c *gin.Context) (*models.JudgingTemplate, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	var template models.JudgingTemplate
	err := database.DB.Preload("Criteria", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).First(&template, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrTemplateNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	return &template, true
}

// saveTemplate stores the template, clearing the default flag of the others when it becomes the default
func saveTemplate(template *models.JudgingTemplate) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if template.IsDefault {
			if err := tx.Model(&models.JudgingTemplate{}).Where("is_default = ? AND id <> ?", true, template.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Criteria").Save(template).Error
	})
}

// GetTemplates lists judging templates with their criteria
// @Summary List judging templates
// @Tags Judging
// @Produce json
// @Success 200 {array} models.JudgingTemplate
// @Router /organizer/judging-templates [get]
// @Security Bearer
func GetTemplates(c *gin.Context) {
	templates := []models.JudgingTemplate{}
	if err := database.DB.Preload("Criteria", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Order("is_default DESC, name").Find(&templates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate returns one judging template
// @Summary Get a judging template
// @Tags Judging
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.JudgingTemplate
// @Failure 404 {object} map[string]string
// @Router /organizer/judging-templates/{id} [get]
// @Security Bearer
func GetTemplate(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, template)
}

// CreateTemplate creates a judging template
// @Summary Create a judging template
// @Tags Judging
// @Accept json
// @Produce json
// @Param template body TemplateRequest true "Template"
// @Success 201 {object} models.JudgingTemplate
// @Failure 400 {object} map[string]string
// @Router /organizer/judging-templates [post]
// @Security Bearer
func CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	template := models.JudgingTemplate{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
		ContestType: req.ContestType,
	}
	if err := saveTemplate(&template); err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// UpdateTemplate updates a judging template
// @Summary Update a judging template
// @Tags Judging
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param template body TemplateRequest true "Template"
// @Success 200 {object} models.JudgingTemplate
// @Failure 404 {object} map[string]string
// @Router /organizer/judging-templates/{id} [put]
// @Security Bearer
func UpdateTemplate(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	var req TemplateRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	template.Name = req.Name
	template.Description = req.Description
	template.IsDefault = req.IsDefault
	template.ContestType = req.ContestType
	if err := saveTemplate(template); err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, template)
}

// DeleteTemplate deletes a template and its criteria unless event contests or sessions depend on it
// @Summary Delete a judging template
// @Tags Judging
// @Param id path int true "Template ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/judging-templates/{id} [delete]
// @Security Bearer
func DeleteTemplate(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}

	var assigned int64
	if err := database.DB.Model(&models.EventContest{}).Where("judging_template_id = ?", template.ID).Count(&assigned).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		return
	}
	if assigned > 0 {
		response.Error(c, http.StatusConflict, ErrTemplateInUse)
		return
	}

	// Event contests without a template fall back to the default one
	if template.IsDefault {
		var sessions int64
		if err := database.DB.Model(&models.JudgingSession{}).
			Joins("JOIN event_contests ON event_contests.id = judging_sessions.event_contest_id").
			Where("event_contests.judging_template_id IS NULL").
			Count(&sessions).Error; err != nil {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
			return
		}
		if sessions > 0 {
			response.Error(c, http.StatusConflict, ErrDefaultTemplateInUse)
			return
		}
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", template.ID).Delete(&models.JudgingTemplateCriterion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.JudgingTemplate{}, template.ID).Error
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.Status(http.StatusNoContent)
}

// apply validates the request and copies it onto the criterion
func (req *CriterionRequest) apply(criterion *models.JudgingTemplateCriterion) bool {
	criterion.Name = req.Name
	criterion.Description = req.Description
	criterion.Weight = req.Weight
	if criterion.Weight == 0 {
		criterion.Weight = 1
	}
	criterion.MaxScore = req.MaxScore
	if criterion.MaxScore == 0 {
		criterion.MaxScore = 10
	}
	criterion.EvaluationType = req.EvaluationType
	if criterion.EvaluationType == "" {
		criterion.EvaluationType = models.EvaluationPoints
	}

	criterion.DiscreteValues = nil
	if criterion.EvaluationType == models.EvaluationDiscrete {
		var values []interface{}
		if err := json.Unmarshal(req.DiscreteValues, &values); err != nil || len(values) == 0 {
			return false
		}
		criterion.DiscreteValues = datatypes.JSON(req.DiscreteValues)
	}
	return true
}

func findCriterion(c *gin.Context, templateID uint) (*models.JudgingTemplateCriterion, bool) {
	id, ok := utils.ParseUintParam(c, "criterionId")
	if !ok {
		return nil, false
	}
	var criterion models.JudgingTemplateCriterion
	if err := database.DB.Where("id = ? AND template_id = ?", id, templateID).First(&criterion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrCriterionNotFound)
		} else {
			response.Error(c, http.StatusInternalServerError, ErrFailedToGet)
		}
		return nil, false
	}
	return &criterion, true
}

// CreateCriterion adds a criterion to a template; running sessions keep their snapshot
// @Summary Add a judging criterion
// @Tags Judging
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param criterion body CriterionRequest true "Criterion"
// @Success 201 {object} models.JudgingTemplateCriterion
// @Failure 400 {object} map[string]string
// @Router /organizer/judging-templates/{id}/criteria [post]
// @Security Bearer
func CreateCriterion(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	var req CriterionRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	criterion := models.JudgingTemplateCriterion{TemplateID: template.ID}
	if !req.apply(&criterion) {
		response.Error(c, http.StatusBadRequest, ErrInvalidDiscreteValues)
		return
	}
	if err := database.DB.Create(&criterion).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusCreated, criterion)
}

// UpdateCriterion updates a criterion of a template
// @Summary Update a judging criterion
// @Tags Judging
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param criterionId path int true "Criterion ID"
// @Param criterion body CriterionRequest true "Criterion"
// @Success 200 {object} models.JudgingTemplateCriterion
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /organizer/judging-templates/{id}/criteria/{criterionId} [put]
// @Security Bearer
func UpdateCriterion(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	criterion, ok := findCriterion(c, template.ID)
	if !ok {
		return
	}
	var req CriterionRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	if !req.apply(criterion) {
		response.Error(c, http.StatusBadRequest, ErrInvalidDiscreteValues)
		return
	}
	if err := database.DB.Save(criterion).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.JSON(http.StatusOK, criterion)
}

// DeleteCriterion removes a criterion from a template
// @Summary Delete a judging criterion
// @Tags Judging
// @Param id path int true "Template ID"
// @Param criterionId path int true "Criterion ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /organizer/judging-templates/{id}/criteria/{criterionId} [delete]
// @Security Bearer
func DeleteCriterion(c *gin.Context) {
	template, ok := findTemplate(c)
	if !ok {
		return
	}
	criterion, ok := findCriterion(c, template.ID)
	if !ok {
		return
	}
	if err := database.DB.Delete(criterion).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedToSave)
		return
	}
	c.Status(http.StatusNoContent)
}
