package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Vehicle{},
	&Wheel{},
	&TickSample{},
}

// Vehicle is one built vehicle and its derived layout
type Vehicle struct {
	ID            uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"index:idx_vehicle_created_at"`
	Name          string         `json:"name" gorm:"size:64;index:idx_vehicle_name"`
	Drivetrain    string         `json:"drivetrain" gorm:"size:8"`
	ChassisMass   float64        `json:"chassisMass"`
	Wheelbase     float64        `json:"wheelbase"`     // as used for suspension derivation
	FrontLeverArm float64        `json:"frontLeverArm"` // centre of mass to front axle
	RearLeverArm  float64        `json:"rearLeverArm"`  // centre of mass to rear axle
	FootprintArea float64        `json:"footprintArea"`
	Footprint     geom.Polygon   `json:"footprint"` // wheel contact polygon, chassis XY plane
	Config        datatypes.JSON `json:"config"`    // full VehicleConfig
	Warnings      datatypes.JSON `json:"warnings" gorm:"default:'[]'"`
	Wheels        []Wheel        `json:"wheels" gorm:"foreignKey:VehicleID"`
}

func (*Vehicle) TableName() string {
	return "vehicles"
}

// Wheel is one created wheel of a vehicle
type Wheel struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	VehicleID  uint           `json:"vehicleId" gorm:"index:idx_wheel_vehicle_id"`
	Vehicle    Vehicle        `json:"-" gorm:"foreignkey:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Position   uint8          `json:"position"` // 0 front-left, 1 front-right, 2 back-left, 3 back-right
	Offset     geom.Point     `json:"offset"`   // XYZ attachment offset after jounce and track adjustment
	Powered    bool           `json:"powered"`
	Steered    bool           `json:"steered"`
	Braked     bool           `json:"braked"`
	RestLength float64        `json:"restLength"`
	Travel     float64        `json:"travel"`
	SpringRate float64        `json:"springRate"`
	Damper     float64        `json:"damper"`
	Tire       datatypes.JSON `json:"tire"`
}

func (*Wheel) TableName() string {
	return "wheels"
}

// TickSample is the control state of one vehicle in one tick
type TickSample struct {
	ID           uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	VehicleID    uint      `json:"vehicleId" gorm:"index:idx_tick_vehicle_id"`
	Vehicle      Vehicle   `json:"-" gorm:"foreignkey:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Tick         uint64    `json:"tick" gorm:"index:idx_tick_number"`
	Time         time.Time `json:"time" gorm:"index:idx_tick_time"`
	Controlled   bool      `json:"controlled"`
	Skipped      bool      `json:"skipped"`
	SkipReason   string    `json:"skipReason" gorm:"size:16"`
	Accelerator  float64   `json:"accelerator"`
	Steering     float64   `json:"steering"`
	Brake        float64   `json:"brake"`
	EngineTorque float64   `json:"engineTorque"`
	BrakeTorque  float64   `json:"brakeTorque"`
	SteerAngle   float64   `json:"steerAngle"`
}

func (*TickSample) TableName() string {
	return "tick_samples"
}
