package models

// All returns every model owned by this service, in dependency order.
func All() []any {
	return []any{
		&UserModel{},
		&SystemSettingModel{},
		&CatalogItemModel{},
		&CourseEnrolmentModel{},
		&ProgramAssignmentModel{},
		&PositionAssignmentModel{},
		&ProductSetModel{},
		&ProductModel{},
		&TargetSetModel{},
		&TargetModel{},
		&AllocationModel{},
		&DistributionModel{},
		&LicenceModel{},
		&StagedFileModel{},
	}
}
